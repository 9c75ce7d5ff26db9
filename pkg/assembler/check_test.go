package assembler

import (
	"strings"
	"testing"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
)

func TestCheckCleanBuildings(t *testing.T) {
	for _, dims := range []part.Dimensions{
		{Width: 5, Height: 3, Depth: 4},
		{Width: 1, Height: 1, Depth: 1},
		{Width: 1, Height: 1, Depth: 2},
		{Width: 20, Height: 20, Depth: 20},
		{Width: 2.5, Height: 7, Depth: 13},
	} {
		t.Run(dims.String(), func(t *testing.T) {
			if findings := Check(build(t, dims)); len(findings) > 0 {
				t.Errorf("unexpected findings: %v", findings)
			}
		})
	}
}

func TestCheckFindings(t *testing.T) {
	tests := []struct {
		name     string
		tamper   func(b *part.Building)
		code     string
		severity Severity
	}{
		{
			name: "side beam pulled off the front beam",
			tamper: func(b *part.Building) {
				side := b.ByRole(part.RoleRoofBeam)[2]
				side.Transform = side.Transform.Translate(geom.V(0, 0, -0.05))
			},
			code:     "open-beam-joint",
			severity: SeverityError,
		},
		{
			name: "post floats",
			tamper: func(b *part.Building) {
				p := b.ByRole(part.RoleGroundBeam)[2]
				p.Transform = p.Transform.Translate(geom.V(0, 0.1, 0))
			},
			code:     "floating-post",
			severity: SeverityWarning,
		},
		{
			name: "bracket loose",
			tamper: func(b *part.Building) {
				br := b.ByRole(part.RoleCornerBeam)[5]
				br.Transform = br.Transform.Translate(geom.V(0, 0, 50))
			},
			code:     "loose-bracket",
			severity: SeverityWarning,
		},
		{
			name: "lodge raised",
			tamper: func(b *part.Building) {
				l := b.ByRole(part.RoleRoofLodge)[1]
				l.Transform = l.Transform.Translate(geom.V(0, 0.02, 0))
			},
			code:     "uneven-lodge",
			severity: SeverityWarning,
		},
		{
			name: "flattened lodge",
			tamper: func(b *part.Building) {
				l := b.ByRole(part.RoleRoofLodge)[0]
				l.Transform.Scale.Y = 0
			},
			code:     "degenerate-part",
			severity: SeverityError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := build(t, part.Dimensions{Width: 5, Height: 3, Depth: 4})
			tt.tamper(b)

			findings := Check(b)
			var found *Finding
			for i := range findings {
				if findings[i].Code == tt.code {
					found = &findings[i]
				}
			}
			if found == nil {
				t.Fatalf("no %s finding in %v", tt.code, findings)
			}
			if found.Severity != tt.severity {
				t.Errorf("severity = %s, want %s", found.Severity, tt.severity)
			}
			if !strings.Contains(found.Error(), "part: ") {
				t.Errorf("finding %q does not name the part", found.Error())
			}
			if got := HasErrors(findings); got != (tt.severity == SeverityError) {
				t.Errorf("HasErrors = %v", got)
			}
		})
	}
}
