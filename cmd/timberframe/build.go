package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/timberframe/pkg/assembler"
	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/export"
	"github.com/chazu/timberframe/pkg/kernel/sdfx"
	"github.com/chazu/timberframe/pkg/part"
	"github.com/chazu/timberframe/pkg/script"
	"github.com/chazu/timberframe/pkg/tessellate"
)

var buildCmd = &cobra.Command{
	Use:   "build [script]",
	Short: "Assemble a building and export it",
	Long: `Assemble a building from --width/--height/--depth, or from every
(building ...) form in a script, and write it to --output. The format
follows the output extension: .obj, .yaml, .xlsx, .pdf or .dxf.
A script with several buildings writes one file per building, named
after the building.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var (
	width, height, depth float64
	outputPath           string
	outputFormat         string
)

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, inspectCmd} {
		cmd.Flags().Float64VarP(&width, "width", "W", 5, "building width in metres")
		cmd.Flags().Float64VarP(&height, "height", "H", 3, "building height in metres")
		cmd.Flags().Float64VarP(&depth, "depth", "D", 4, "building depth in metres")
	}
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (required)")
	buildCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format, overriding the extension")
	_ = buildCmd.MarkFlagRequired("output")
}

// job is one building to assemble.
type job struct {
	name string
	dims part.Dimensions
	cfg  config.Config
}

func runBuild(cmd *cobra.Command, args []string) error {
	format := outputFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(outputPath), ".")
	}
	format = strings.ToLower(format)
	if !validFormat(format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(formats, ", "))
	}

	jobs, err := plan(args)
	if err != nil {
		return err
	}

	k := sdfx.NewWithCells(cfg.Assets.MeshCells)
	store, err := openStore(cfg, k)
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
		for _, f := range assembler.Check(b) {
			log.Warnf("%s: %s", j.name, f)
		}
		path := outputPath
		if len(jobs) > 1 {
			path = suffixPath(outputPath, j.name)
		}
		if err := writeBuilding(path, format, b, k); err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %d parts -> %s\n", j.name, b.Dimensions, b.Len(), path)
	}
	return nil
}

// plan turns the command line into build jobs: one per (building ...) in
// the script, or a single job from the dimension flags.
func plan(args []string) ([]job, error) {
	if len(args) == 0 {
		l := cfg.Limits
		dims := part.Dimensions{Width: width, Height: height, Depth: depth}
		if err := l.CheckDimensions(dims); err != nil {
			return nil, err
		}
		dims = part.Dimensions{Width: l.Snap(width), Height: l.Snap(height), Depth: l.Snap(depth)}
		return []job{{name: "building", dims: dims, cfg: cfg}}, nil
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	prog, evalErrs, err := script.NewEngine(cfg).Evaluate(string(src))
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = fmt.Sprintf("%s: %s", args[0], e)
		}
		return nil, fmt.Errorf("script errors:\n%s", strings.Join(msgs, "\n"))
	}
	if len(prog.Requests) == 0 {
		return nil, fmt.Errorf("%s does not request a building", args[0])
	}

	jobs := make([]job, len(prog.Requests))
	for i, r := range prog.Requests {
		jobs[i] = job{name: r.Name, dims: r.Dimensions, cfg: prog.Config}
	}
	return jobs, nil
}

var formats = []string{"obj", "yaml", "yml", "xlsx", "pdf", "dxf"}

func validFormat(f string) bool {
	for _, v := range formats {
		if v == f {
			return true
		}
	}
	return false
}

// writeBuilding exports b in format. Only OBJ needs meshes.
func writeBuilding(path, format string, b *part.Building, k *sdfx.SdfxKernel) error {
	switch format {
	case "xlsx":
		return export.WriteXLSX(path, b)
	case "pdf":
		return export.WritePDF(path, b)
	case "dxf":
		return export.WriteDXF(path, b)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case "obj":
		meshes, terr := tessellate.Tessellate(b, k)
		if terr != nil {
			err = terr
			break
		}
		err = export.WriteOBJ(f, meshes)
	default:
		err = export.WriteYAML(f, b)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// suffixPath inserts name before the extension of path.
func suffixPath(path, name string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + name + ext
}
