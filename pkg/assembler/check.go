package assembler

import (
	"fmt"
	"math"

	"github.com/chazu/timberframe/pkg/geom"
	"github.com/chazu/timberframe/pkg/part"
)

// Severity ranks a Finding.
type Severity int

const (
	// SeverityError marks a building that cannot be raised as laid out.
	SeverityError Severity = iota
	// SeverityWarning marks a joint that looks loose but does not block.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is one structural problem reported by Check.
type Finding struct {
	Code     string
	Message  string
	Instance string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Instance != "" {
		return fmt.Sprintf("%s: %s (part: %s)", f.Code, f.Message, f.Instance)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// checkTol absorbs rounding from centering.
const checkTol = 1e-9

// Check inspects the joints of a laid out building. Errors come first:
// degenerate parts and roof beams that leave the ring open. Warnings
// follow: posts not standing on the floor, brackets touching no post and
// lodges off the roof plane.
func Check(b *part.Building) []Finding {
	var findings []Finding
	findings = append(findings, checkDegenerate(b)...)
	findings = append(findings, checkBeamRing(b)...)
	findings = append(findings, checkPostsStand(b)...)
	findings = append(findings, checkBracketsTouch(b)...)
	findings = append(findings, checkLodgesLevel(b)...)
	return findings
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func checkDegenerate(b *part.Building) []Finding {
	var out []Finding
	for _, in := range b.Instances() {
		if in.Bounds().IsDegenerate() {
			out = append(out, Finding{
				Code:     "degenerate-part",
				Message:  fmt.Sprintf("bounds %s have no volume", in.Bounds()),
				Instance: in.Name(),
				Severity: SeverityError,
			})
		}
	}
	return out
}

// checkBeamRing reports roof beams that do not meet two other beams end to
// face. The four beams close a ring, so each has exactly two neighbours.
func checkBeamRing(b *part.Building) []Finding {
	beams := b.ByRole(part.RoleRoofBeam)
	if len(beams) < 2 {
		return nil
	}

	var out []Finding
	for i, beam := range beams {
		contacts := 0
		for j, other := range beams {
			if i != j && faceContact(beam.Bounds(), other.Bounds()) {
				contacts++
			}
		}
		if contacts < 2 {
			out = append(out, Finding{
				Code:     "open-beam-joint",
				Message:  fmt.Sprintf("meets %d of 2 neighbouring beams", contacts),
				Instance: beam.Name(),
				Severity: SeverityError,
			})
		}
	}
	return out
}

// checkLodgesLevel reports lodges that do not share the first lodge's
// bearing height.
func checkLodgesLevel(b *part.Building) []Finding {
	lodges := b.ByRole(part.RoleRoofLodge)
	if len(lodges) == 0 {
		return nil
	}
	level := lodges[0].Bounds().Min.Y

	var out []Finding
	for _, l := range lodges[1:] {
		if d := l.Bounds().Min.Y - level; math.Abs(d) > checkTol {
			out = append(out, Finding{
				Code:     "uneven-lodge",
				Message:  fmt.Sprintf("sits %.4f off the roof plane", d),
				Instance: l.Name(),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func checkPostsStand(b *part.Building) []Finding {
	floors := b.ByRole(part.RoleFloor)
	if len(floors) == 0 {
		return nil
	}
	top := floors[0].Bounds().Max.Y

	var out []Finding
	for _, p := range b.ByRole(part.RoleGroundBeam) {
		if gap := p.Bounds().Min.Y - top; math.Abs(gap) > checkTol {
			out = append(out, Finding{
				Code:     "floating-post",
				Message:  fmt.Sprintf("foot is %.4f from the floor", gap),
				Instance: p.Name(),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func checkBracketsTouch(b *part.Building) []Finding {
	posts := b.ByRole(part.RoleGroundBeam)

	var out []Finding
	for _, br := range b.ByRole(part.RoleCornerBeam) {
		touching := false
		for _, p := range posts {
			if faceContact(br.Bounds(), p.Bounds()) {
				touching = true
				break
			}
		}
		if !touching {
			out = append(out, Finding{
				Code:     "loose-bracket",
				Message:  "touches no post",
				Instance: br.Name(),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

// faceContact reports whether two boxes meet face to face: contact on one
// axis and overlap on the other two.
func faceContact(a, b geom.Box3) bool {
	ov := a.Overlap(b)
	zero, positive := 0, 0
	for _, v := range [3]float64{ov.X, ov.Y, ov.Z} {
		switch {
		case math.Abs(v) <= checkTol:
			zero++
		case v > checkTol:
			positive++
		}
	}
	return zero == 1 && positive == 2
}
