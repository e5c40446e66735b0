package dataprep

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/internal/ctxlog"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// Action is an ordered list of steps run over a working set. An action is not
// safe for concurrent use and runs one execution at a time.
type Action struct {
	name   string
	logger *slog.Logger
	hooks  []model.ActionOption
	store  ObjectStore
	steps  []*Step

	state State

	// Set for the duration of one execution.
	runCtx     *Context
	runLogger  *slog.Logger
	selection  []*model.Object
	changes    *changeSet
	containers map[string]string
}

// NewAction creates an empty action.
func NewAction(name string, opts ...ActionOption) *Action {
	a := &Action{
		name:   name,
		logger: ctxlog.Discard(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Action) Name() string { return a.name }

// State returns the state of the last or current execution.
func (a *Action) State() State { return a.state }

// Interrupted reports whether the last execution was stopped by cancellation or
// by the continuation callback of the run context.
func (a *Action) Interrupted() bool { return a.state == Interrupted }

// AddOperation appends an operation step and returns its index, or IndexNone
// when op is nil.
func (a *Action) AddOperation(name string, op Operation, params *model.Object) int {
	if op == nil {
		a.logger.Error("unable to add operation", "action", a.name, "step", name, "error", "operation must be set")

		return IndexNone
	}

	return a.addStep(&Step{name: name, operation: op, params: params, enabled: true})
}

// AddFilter appends a filter step and returns its index, or IndexNone when f is
// nil.
func (a *Action) AddFilter(name string, f Filter, params *model.Object) int {
	if f == nil {
		a.logger.Error("unable to add filter", "action", a.name, "step", name, "error", "filter must be set")

		return IndexNone
	}

	return a.addStep(&Step{name: name, filter: f, params: params, enabled: true})
}

func (a *Action) addStep(step *Step) int {
	if step.name == "" {
		a.logger.Error("unable to add step", "action", a.name, "error", "name must be set")

		return IndexNone
	}

	a.steps = append(a.steps, step)

	return len(a.steps) - 1
}

// Steps returns the steps in run order.
func (a *Action) Steps() []*Step {
	out := make([]*Step, len(a.steps))
	copy(out, a.steps)

	return out
}

// Step returns the step at index.
func (a *Action) Step(index int) (*Step, error) {
	if index < 0 || index >= len(a.steps) {
		return nil, errors.Wrapf(ErrStepNotFound, "index %d", index)
	}

	return a.steps[index], nil
}

// RemoveStep removes and returns the step at index.
func (a *Action) RemoveStep(index int) (*Step, error) {
	step, err := a.Step(index)
	if err != nil {
		return nil, err
	}

	a.steps = append(a.steps[:index], a.steps[index+1:]...)

	return step, nil
}

// MoveStep moves the step at from to index to.
func (a *Action) MoveStep(from, to int) error {
	step, err := a.Step(from)
	if err != nil {
		return err
	}

	if to < 0 || to >= len(a.steps) {
		return errors.Wrapf(ErrStepNotFound, "index %d", to)
	}

	a.steps = append(a.steps[:from], a.steps[from+1:]...)
	a.steps = append(a.steps[:to], append([]*Step{step}, a.steps[to:]...)...)

	return nil
}

// EnableStep turns the step at index on or off.
func (a *Action) EnableStep(index int, enabled bool) error {
	step, err := a.Step(index)
	if err != nil {
		return err
	}

	step.enabled = enabled

	return nil
}

// Duplicate copies the action. Step parameter objects are cloned; the returned
// map links every original parameter object to its copy.
func (a *Action) Duplicate() (*Action, map[*model.Object]*model.Object) {
	dup := &Action{
		name:   a.name,
		logger: a.logger,
		hooks:  append([]model.ActionOption(nil), a.hooks...),
		store:  a.store,
		steps:  make([]*Step, len(a.steps)),
	}

	sourceToCopy := make(map[*model.Object]*model.Object)

	for i, step := range a.steps {
		copied := *step
		if step.params != nil {
			copied.params = step.params.Clone(step.params.Name())
			sourceToCopy[step.params] = copied.params
		}

		dup.steps[i] = &copied
	}

	return dup, sourceToCopy
}

// Execute runs every enabled step over objects and returns the final
// selection. Assets and actors are told apart by the action store, or by the
// objects themselves when the action has no store.
func (a *Action) Execute(ctx context.Context, objects []*model.Object) ([]*model.Object, error) {
	if len(a.steps) == 0 {
		return append([]*model.Object{}, objects...), nil
	}

	runCtx := NewContext("", a.store, nil)
	runCtx.Logger = a.logger

	for _, obj := range objects {
		if a.isAsset(obj) {
			runCtx.Assets.Add(obj)
		} else {
			runCtx.World = append(runCtx.World, obj)
		}
	}

	if err := a.run(ctx, runCtx, objects, IndexNone, false); err != nil {
		return nil, err
	}

	return append([]*model.Object{}, a.selection...), nil
}

// ExecuteAction runs the action in runCtx. With specificStep set to IndexNone
// every enabled step runs. Otherwise the steps up to and including
// specificStep run, or only specificStep when stepOnly is set. Cancellation and
// a vetoing CanContinue stop the run without error and leave the action
// Interrupted.
func (a *Action) ExecuteAction(ctx context.Context, runCtx *Context, specificStep int, stepOnly bool) error {
	if runCtx == nil {
		return ErrContextMustBeSet
	}

	if specificStep != IndexNone && (specificStep < 0 || specificStep >= len(a.steps)) {
		return errors.Wrapf(ErrStepNotFound, "index %d", specificStep)
	}

	return a.run(ctx, runCtx, runCtx.Objects(), specificStep, stepOnly)
}

// Selection returns the objects selected at the end of the last execution.
func (a *Action) Selection() []*model.Object {
	return append([]*model.Object{}, a.selection...)
}

// plan returns the indices of the steps to run.
func (a *Action) plan(specificStep int, stepOnly bool) []int {
	first, last := 0, len(a.steps)-1

	if specificStep != IndexNone {
		last = specificStep
		if stepOnly {
			first = specificStep
		}
	}

	var planned []int

	for i := first; i <= last; i++ {
		if step := a.steps[i]; step != nil && step.enabled {
			planned = append(planned, i)
		}
	}

	return planned
}

func (a *Action) run(ctx context.Context, runCtx *Context, objects []*model.Object, specificStep int, stepOnly bool) error {
	planned := a.plan(specificStep, stepOnly)

	a.begin(ctx, runCtx, objects)
	defer a.end()

	err := a.prepareHooks(planned)
	if err != nil {
		return a.abort(err)
	}

	for _, idx := range planned {
		outcome, err := a.runStep(ctx, idx)
		if err != nil {
			return a.abort(err)
		}

		if outcome != outcomeContinue {
			a.runLogger.Info("action interrupted", "action", a.name, "step", a.steps[idx].name, "cancelled", outcome == outcomeCancelled)
			a.state = Interrupted

			break
		}
	}

	if a.state != Interrupted {
		a.state = Completed
	}

	return a.finishHooks()
}

func (a *Action) begin(ctx context.Context, runCtx *Context, objects []*model.Object) {
	a.runCtx = runCtx
	fallback := runCtx.Logger
	if fallback == nil {
		fallback = a.logger
	}

	a.runLogger = ctxlog.FromContext(ctx, fallback)

	if runCtx.Assets == nil {
		runCtx.Assets = NewAssetSet()
	}

	a.selection = append([]*model.Object{}, objects...)
	a.changes = newChangeSet()
	a.containers = make(map[string]string)
	a.state = Idle
}

func (a *Action) end() {
	if a.changes != nil {
		a.changes.clear()
	}

	a.runCtx = nil
	a.containers = nil
}

func (a *Action) prepareHooks(planned []int) error {
	for _, hook := range a.hooks {
		if err := hook.New(); err != nil {
			return errors.Wrap(err, "unable to apply action option")
		}
	}

	parent := model.StartStep

	for _, idx := range planned {
		info := a.steps[idx].info(idx)

		for _, hook := range a.hooks {
			if err := hook.PrepareStep(parent, info); err != nil {
				return errors.Wrap(err, "unable to run before step function")
			}
		}

		parent = info
	}

	return nil
}

// abort interrupts the run on a hook error. Finish hooks still run; their own
// errors are logged so err is the one returned.
func (a *Action) abort(err error) error {
	a.state = Interrupted

	if ferr := a.finishHooks(); ferr != nil {
		a.runLogger.Warn("unable to finish action options", "action", a.name, "error", ferr)
	}

	return err
}

func (a *Action) finishHooks() error {
	for _, hook := range a.hooks {
		if err := hook.Finish(); err != nil {
			return errors.Wrap(err, "unable to finish action option")
		}
	}

	return nil
}

// runStep executes one step, reconciles its changes and decides whether the
// run goes on.
func (a *Action) runStep(ctx context.Context, idx int) (stepOutcome, error) {
	step := a.steps[idx]
	a.changes.dirty = false

	start := time.Now()

	if step.operation != nil {
		a.state = RunningOperation
		opCtx := &OperationContext{action: a, step: step}

		if err := step.operation.OnExecution(ctx, opCtx); err != nil {
			a.runLogger.Warn("operation failed", "action", a.name, "step", step.name, "error", err)
		}
	} else {
		a.state = RunningFilter

		kept, err := step.filter.Filter(ctx, step.params, a.Selection())
		if err != nil {
			a.runLogger.Warn("filter failed", "action", a.name, "step", step.name, "error", err)
		} else {
			a.selection = narrow(a.selection, kept)
		}
	}

	computation := time.Since(start)

	a.state = Reconciling
	start = time.Now()
	a.processWorkingSetChanged(ctx)
	reconcile := time.Since(start)

	info := step.info(idx)
	for _, hook := range a.hooks {
		if err := hook.OnStepOutput(info, computation, reconcile, len(a.selection)); err != nil {
			return outcomeStop, errors.Wrap(err, "unable to run step output function")
		}
	}

	if ctx.Err() != nil || (a.runCtx.Reporter != nil && a.runCtx.Reporter.IsWorkCancelled()) {
		return outcomeCancelled, nil
	}

	if a.runCtx.CanContinue != nil && !a.runCtx.CanContinue(a, step.operation, step.filter) {
		return outcomeStop, nil
	}

	return outcomeContinue, nil
}

// narrow keeps the objects of kept that belong to selection, in kept order and
// without duplicates.
func narrow(selection, kept []*model.Object) []*model.Object {
	allowed := make(map[*model.Object]struct{}, len(selection))
	for _, obj := range selection {
		allowed[obj] = struct{}{}
	}

	out := make([]*model.Object, 0, len(kept))

	for _, obj := range kept {
		if _, ok := allowed[obj]; !ok {
			continue
		}

		delete(allowed, obj)
		out = append(out, obj)
	}

	return out
}

func (a *Action) isAsset(obj *model.Object) bool {
	store := a.store
	if a.runCtx != nil && a.runCtx.Store != nil {
		store = a.runCtx.Store
	}

	if store != nil {
		return store.IsAsset(obj)
	}

	return obj.IsAsset()
}
