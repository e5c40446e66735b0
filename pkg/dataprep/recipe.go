package dataprep

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/internal/ctxlog"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/parameterization"
)

// Recipe is an ordered list of actions sharing one parameterization.
type Recipe struct {
	name    string
	logger  *slog.Logger
	actions []*Action
	params  *parameterization.Parameterization
}

func NewRecipe(name string, opts ...RecipeOption) *Recipe {
	r := &Recipe{
		name:   name,
		logger: ctxlog.Discard(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.params == nil {
		r.params = parameterization.New(parameterization.WithLogger(r.logger))
	}

	return r
}

func (r *Recipe) Name() string { return r.name }

// Parameterization returns the parameters shared by the steps of the recipe.
func (r *Recipe) Parameterization() *parameterization.Parameterization {
	return r.params
}

// AddAction appends action and returns its index.
func (r *Recipe) AddAction(action *Action) int {
	if action == nil {
		r.logger.Error("unable to add action", "recipe", r.name, "error", ErrActionMustBeSet)

		return IndexNone
	}

	r.actions = append(r.actions, action)

	return len(r.actions) - 1
}

func (r *Recipe) Actions() []*Action {
	out := make([]*Action, len(r.actions))
	copy(out, r.actions)

	return out
}

func (r *Recipe) Action(index int) (*Action, error) {
	if index < 0 || index >= len(r.actions) {
		return nil, errors.Wrapf(ErrActionNotFound, "index %d", index)
	}

	return r.actions[index], nil
}

// RemoveAction removes the action at index and every binding on its steps.
func (r *Recipe) RemoveAction(index int) error {
	action, err := r.Action(index)
	if err != nil {
		return err
	}

	r.actions = append(r.actions[:index], r.actions[index+1:]...)

	var params []*model.Object

	for _, step := range action.steps {
		if step.params != nil {
			params = append(params, step.params)
		}
	}

	r.params.RemoveBindingsFromObjects(params...)

	return nil
}

// RemoveStep removes a step of an action and every binding on it.
func (r *Recipe) RemoveStep(actionIndex, stepIndex int) error {
	action, err := r.Action(actionIndex)
	if err != nil {
		return err
	}

	step, err := action.RemoveStep(stepIndex)
	if err != nil {
		return err
	}

	if step.params != nil {
		r.params.RemoveBindingsFromObjects(step.params)
	}

	return nil
}

// Run executes every action in order over runCtx with the canonical parameter
// values. It stops after the first interrupted action.
func (r *Recipe) Run(ctx context.Context, runCtx *Context) error {
	return runActions(ctx, runCtx, r.actions)
}

// NewInstance creates an instance running the recipe with its own parameter
// values.
func (r *Recipe) NewInstance() *RecipeInstance {
	return &RecipeInstance{
		recipe: r,
		params: parameterization.NewInstance(r.params),
	}
}

func runActions(ctx context.Context, runCtx *Context, actions []*Action) error {
	if runCtx == nil {
		return ErrContextMustBeSet
	}

	for _, action := range actions {
		err := action.ExecuteAction(ctx, runCtx, IndexNone, false)
		if err != nil {
			return errors.Wrapf(err, "unable to execute action %s", action.name)
		}

		if action.Interrupted() {
			return nil
		}
	}

	return nil
}

// RecipeInstance runs copies of the actions of a recipe with instance-local
// parameter values. The recipe itself is never modified.
type RecipeInstance struct {
	recipe *Recipe
	params *parameterization.Instance
}

func (ri *RecipeInstance) Recipe() *Recipe { return ri.recipe }

// Parameters returns the instance-local parameter values.
func (ri *RecipeInstance) Parameters() *parameterization.Instance {
	return ri.params
}

// Run duplicates the actions of the recipe, applies the instance parameter
// values onto the copies and executes them over runCtx.
func (ri *RecipeInstance) Run(ctx context.Context, runCtx *Context) error {
	actions := make([]*Action, 0, len(ri.recipe.actions))

	for _, action := range ri.recipe.actions {
		dup, sourceToCopy := action.Duplicate()

		applied, err := ri.params.Apply(sourceToCopy)
		if err != nil {
			return errors.Wrapf(err, "unable to apply parameters to action %s", action.name)
		}

		ri.recipe.logger.Debug("parameters applied", "recipe", ri.recipe.name, "action", action.name, "count", applied)

		actions = append(actions, dup)
	}

	return runActions(ctx, runCtx, actions)
}

func (ri *RecipeInstance) MarshalBinary() ([]byte, error) {
	return ri.params.MarshalBinary()
}

func (ri *RecipeInstance) UnmarshalBinary(data []byte) error {
	return ri.params.UnmarshalBinary(data)
}

// Close detaches the instance from the recipe parameterization.
func (ri *RecipeInstance) Close() {
	ri.params.Close()
}
