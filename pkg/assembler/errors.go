package assembler

import (
	"errors"
	"fmt"

	"github.com/chazu/timberframe/pkg/part"
)

var (
	// ErrAssetLoad matches every *AssetLoadError.
	ErrAssetLoad = errors.New("asset load failed")
	// ErrDegenerateInput matches every *DegenerateInputError.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrStale is returned to a build that was superseded by a newer
	// request before it could commit. Nothing was inserted into the scene.
	ErrStale = errors.New("build superseded by newer request")
)

// AssetLoadError reports a template that could not be resolved.
type AssetLoadError struct {
	Role part.Role
	ID   part.Identifier
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load %s template %s: %v", e.Role, e.ID, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAssetLoad) match.
func (e *AssetLoadError) Is(target error) bool { return target == ErrAssetLoad }

// DegenerateInputError reports an input for which no building can be laid
// out: a non-positive dimension, a footprint too small for the posts, or a
// template with unusable bounds.
type DegenerateInputError struct {
	Field  string
	Value  float64
	Reason string
	Err    error
}

func (e *DegenerateInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s = %g: %s", e.Field, e.Value, e.Reason)
}

func (e *DegenerateInputError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDegenerateInput) match.
func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }
