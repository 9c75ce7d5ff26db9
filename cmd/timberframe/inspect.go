package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/timberframe/pkg/assembler"
	"github.com/chazu/timberframe/pkg/export"
	"github.com/chazu/timberframe/pkg/kernel/sdfx"
	"github.com/chazu/timberframe/pkg/part"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [script]",
	Short: "Print part counts, bounds and the bill of materials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	jobs, err := plan(args)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, sdfx.NewWithCells(cfg.Assets.MeshCells))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, j := range jobs {
		b, err := assembler.New(store, nil, j.cfg).Build(ctx, j.dims)
		if err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
		printSummary(cmd.OutOrStdout(), j.name, b)
	}
	return nil
}

func printSummary(out io.Writer, name string, b *part.Building) {
	bounds := b.Bounds()
	size := bounds.Size()
	fmt.Fprintf(out, "%s (%s)\n", name, b.Dimensions)
	fmt.Fprintf(out, "  parts:    %d\n", b.Len())
	fmt.Fprintf(out, "  envelope: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(out, "  bounds:   %s\n\n", bounds)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ROLE\tCOUNT\tLENGTH\tSECTION")
	for _, l := range export.BillOfMaterials(b) {
		fmt.Fprintf(tw, "  %s\t%d\t%.3f\t%.3f x %.3f\n", l.Role, l.Count, l.Length, l.Height, l.Width)
	}
	tw.Flush()

	findings := assembler.Check(b)
	if len(findings) == 0 {
		fmt.Fprintln(out, "\n  check:    ok")
	}
	for _, f := range findings {
		fmt.Fprintf(out, "\n  %s: %s", f.Severity, f)
	}
	fmt.Fprintln(out)
}
