package script

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/timberframe/pkg/part"
)

// preprocessSource rewrites script source into something zygomys reads:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global registration and never collide with user variables.
//  2. kebab-case identifiers become snake_case, since zygomys parses a
//     hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' && j+1 < len(b) {
					j++
				}
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			out = append(out, b[i:j]...)
			i = j

		case c == ';':
			out = append(out, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is a call's argument list split into keyword and positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// only rejects keywords a builtin does not understand.
func (a kwArgs) only(fn string, allowed ...string) error {
	for name := range a.kw {
		known := false
		for _, ok := range allowed {
			if name == ok {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// number returns the named keyword as a float64. ok is false when the
// keyword is absent.
func (a kwArgs) number(fn, name string) (v float64, ok bool, err error) {
	s, present := a.kw[name]
	if !present {
		return 0, false, nil
	}
	v, err = toFloat64(s)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %s: %w", fn, name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%s: %s must be finite", fn, name)
	}
	return v, true, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts both :keyword and "string".
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	return toString(s)
}

// sexpRequest is what (building ...) returns, so scripts can print or
// collect it.
type sexpRequest struct {
	req Request
}

func (r *sexpRequest) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(building %q %s)", r.req.Name, r.req.Dimensions)
}
func (r *sexpRequest) Type() *zygo.RegisteredType { return nil }

// registerBuiltins installs the build vocabulary. Each builtin records into p.
// Source must go through preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, p *Program) {

	// (building ["name"] :width 5 :height 3 :depth 4)
	env.AddFunction("building", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("building", "width", "height", "depth"); err != nil {
			return zygo.SexpNull, err
		}

		req := Request{Name: fmt.Sprintf("building-%d", len(p.Requests)+1)}
		if len(pa.positional) > 0 {
			n, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("building: name: %w", err)
			}
			req.Name = n
		}

		dims := map[string]*float64{
			"width":  &req.Dimensions.Width,
			"height": &req.Dimensions.Height,
			"depth":  &req.Dimensions.Depth,
		}
		for _, field := range []string{"width", "height", "depth"} {
			v, ok, err := pa.number("building", field)
			if err != nil {
				return zygo.SexpNull, err
			}
			if !ok {
				return zygo.SexpNull, fmt.Errorf("building: :%s is required", field)
			}
			if err := p.Config.Limits.Check(field, v); err != nil {
				return zygo.SexpNull, fmt.Errorf("building: %w", err)
			}
			*dims[field] = v
		}

		p.Requests = append(p.Requests, req)
		return &sexpRequest{req: req}, nil
	})

	// (joinery :reveal 0.3 :padding 0.01)
	env.AddFunction("joinery", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only("joinery", "reveal", "padding"); err != nil {
			return zygo.SexpNull, err
		}
		j := &p.Config.Joinery
		for field, dst := range map[string]*float64{"reveal": &j.LodgeReveal, "padding": &j.LodgePadding} {
			v, ok, err := pa.number("joinery", field)
			if err != nil {
				return zygo.SexpNull, err
			}
			if !ok {
				continue
			}
			if v < 0 {
				return zygo.SexpNull, fmt.Errorf("joinery: %s %g is negative", field, v)
			}
			*dst = v
		}
		return zygo.SexpNull, nil
	})

	// (part :roof-beam :geometry "models/oak.obj" :material "models/oak.mtl")
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a role")
		}
		roleName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: role: %w", err)
		}
		role, err := part.ParseRole(roleName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}

		pa := parseArgs(args[1:])
		if err := pa.only("part", "geometry", "material"); err != nil {
			return zygo.SexpNull, err
		}
		geo, ok := pa.kw["geometry"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("part: :geometry is required")
		}
		id := part.Identifier{}
		if id.Geometry, err = toString(geo); err != nil {
			return zygo.SexpNull, fmt.Errorf("part: geometry: %w", err)
		}
		if mat, ok := pa.kw["material"]; ok {
			if id.Material, err = toString(mat); err != nil {
				return zygo.SexpNull, fmt.Errorf("part: material: %w", err)
			}
		}
		p.Config.Library[role] = id
		return zygo.SexpNull, nil
	})
}
