// Package rebuild provides the default asset rebuild service.
package rebuild

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

var ErrBuildMustBeSet = errors.New("build function must be set")

// BuildFunc builds the derived data of one asset.
type BuildFunc func(ctx context.Context, asset *model.Object) error

// Parallel rebuilds a batch of assets with a bounded number of goroutines. The
// first failure cancels the builds that did not start yet.
type Parallel struct {
	build      BuildFunc
	concurrent int
}

var _ dataprep.RebuildService = (*Parallel)(nil)

type Option func(p *Parallel)

// Concurrency sets how many assets are built at the same time.
func Concurrency(concurrent int) Option {
	return func(p *Parallel) {
		p.concurrent = concurrent
	}
}

func New(build BuildFunc, opts ...Option) (*Parallel, error) {
	if build == nil {
		return nil, ErrBuildMustBeSet
	}

	p := &Parallel{build: build, concurrent: 1}
	for _, opt := range opts {
		opt(p)
	}

	if p.concurrent < 1 {
		p.concurrent = 1
	}

	return p, nil
}

func (p *Parallel) Rebuild(ctx context.Context, assets []*model.Object, reporter dataprep.ProgressReporter) error {
	if len(assets) == 0 {
		return nil
	}

	progress := newProgress(reporter, len(assets))
	defer progress.end()

	if p.concurrent == 1 {
		return p.sequential(ctx, assets, progress)
	}

	return p.parallel(ctx, assets, progress)
}

func (p *Parallel) sequential(ctx context.Context, assets []*model.Object, progress *progress) error {
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "rebuild cancelled")
		}

		if err := p.build(ctx, asset); err != nil {
			return errors.Wrapf(err, "unable to rebuild %s", asset.Path())
		}

		progress.done(asset)
	}

	return nil
}

func (p *Parallel) parallel(ctx context.Context, assets []*model.Object, progress *progress) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(p.concurrent)

	for _, asset := range assets {
		asset := asset
		errGrp.Go(func() error {
			if err := dCtx.Err(); err != nil {
				return errors.Wrap(err, "rebuild cancelled")
			}

			if err := p.build(dCtx, asset); err != nil {
				return errors.Wrapf(err, "unable to rebuild %s", asset.Path())
			}

			progress.done(asset)

			return nil
		})
	}

	return errGrp.Wait()
}

// progress serializes reporter calls made from build goroutines.
type progress struct {
	lock     sync.Mutex
	reporter dataprep.ProgressReporter
}

func newProgress(reporter dataprep.ProgressReporter, total int) *progress {
	if reporter != nil {
		reporter.BeginWork("rebuilding assets", float64(total))
	}

	return &progress{reporter: reporter}
}

func (p *progress) done(asset *model.Object) {
	if p.reporter == nil {
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	p.reporter.ReportProgress(1, asset.Path())
}

func (p *progress) end() {
	if p.reporter != nil {
		p.reporter.EndWork()
	}
}
