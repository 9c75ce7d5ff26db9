// Package assembler turns three dimensions into a complete timber frame.
//
// A build resolves the five part templates, runs the placement pipeline
// (floor, ground beams, roof beams, corner beams, roof lodges, centering)
// and commits the finished building to a scene, replacing the previous one.
// Builds may be requested concurrently; only the most recent request
// commits.
package assembler

import (
	"context"
	"errors"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/timberframe/pkg/asset"
	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/part"
)

var log = logging.Logger("tf-assembler")

// Scene receives committed instances. *scene.Scene implements it.
type Scene interface {
	Add(insts ...*part.Instance)
	Remove(insts ...*part.Instance)
}

// Assembler builds buildings and keeps the scene showing the latest one.
// It is safe for concurrent use.
type Assembler struct {
	store asset.Store
	scene Scene
	cfg   config.Config

	mu         sync.Mutex
	generation uint64
	current    *part.Building
}

// New returns an assembler resolving templates from store and committing
// to sc. sc may be nil for headless use.
func New(store asset.Store, sc Scene, cfg config.Config) *Assembler {
	return &Assembler{store: store, scene: sc, cfg: cfg}
}

// Build lays out a building for dims and commits it.
//
// Errors:
//   - *DegenerateInputError for unusable dimensions or template bounds,
//     reported before the scene is touched.
//   - *AssetLoadError when a template cannot be resolved; the scene keeps
//     the previous building.
//   - ErrStale when a newer Build started before this one finished.
func (a *Assembler) Build(ctx context.Context, dims part.Dimensions) (*part.Building, error) {
	if err := validateDimensions(dims); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.generation++
	gen := a.generation
	cfg := a.cfg
	a.mu.Unlock()

	log.Debugf("build %d started for %s", gen, dims)

	resolve := a.resolver(ctx, cfg.Library)
	if cfg.Assets.Concurrent {
		templates, err := a.prefetch(ctx, cfg.Library)
		if err != nil {
			return nil, err
		}
		resolve = func(r part.Role) (*part.Template, error) { return templates[r], nil }
	}

	b, err := runPipeline(dims, cfg.Joinery, resolve)
	if err != nil {
		log.Warnf("build %d failed: %v", gen, err)
		return nil, err
	}
	return a.commit(gen, b)
}

// Configure replaces the configuration used by subsequent builds. Builds
// already running keep the configuration they started with.
func (a *Assembler) Configure(cfg config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
}

// Config returns the configuration the next build will use.
func (a *Assembler) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Current returns the last committed building, or nil.
func (a *Assembler) Current() *part.Building {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// commit swaps b into the scene unless a newer build has started.
func (a *Assembler) commit(gen uint64, b *part.Building) (*part.Building, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		log.Debugf("build %d superseded by %d", gen, a.generation)
		return nil, ErrStale
	}

	if a.scene != nil {
		if a.current != nil {
			a.scene.Remove(a.current.Instances()...)
		}
		a.scene.Add(b.Instances()...)
	}
	a.current = b
	log.Infof("committed building %s (%s, %d instances)", b.ID, b.Dimensions, b.Len())
	return b, nil
}

// resolver returns a function that resolves one role's template on demand.
func (a *Assembler) resolver(ctx context.Context, lib part.Library) func(part.Role) (*part.Template, error) {
	return func(r part.Role) (*part.Template, error) {
		return a.resolve(ctx, lib, r)
	}
}

func (a *Assembler) resolve(ctx context.Context, lib part.Library, r part.Role) (*part.Template, error) {
	id, ok := lib[r]
	if !ok {
		return nil, &AssetLoadError{Role: r, Err: errors.New("role missing from part library")}
	}
	t, err := a.store.Resolve(ctx, id)
	if errors.Is(err, part.ErrDegenerateBounds) {
		return nil, &DegenerateInputError{Field: r.String() + " template", Reason: "bounds must be finite and non-zero", Err: err}
	}
	if err != nil {
		return nil, &AssetLoadError{Role: r, ID: id, Err: err}
	}
	return t, nil
}

// prefetch resolves every role's template in parallel. The first failure
// cancels the rest.
func (a *Assembler) prefetch(ctx context.Context, lib part.Library) (map[part.Role]*part.Template, error) {
	results := make([]*part.Template, len(part.Roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range part.Roles {
		g.Go(func() error {
			t, err := a.resolve(gctx, lib, r)
			if err != nil {
				return err
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	templates := make(map[part.Role]*part.Template, len(results))
	for i, r := range part.Roles {
		templates[r] = results[i]
	}
	return templates, nil
}
