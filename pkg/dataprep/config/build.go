package config

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/internal/ctxlog"
	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/parameterization"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
	"github.com/askiada/go-dataprep/pkg/dataprep/rebuild"
)

// BuildOptions configures the actions built from a config. Every field is
// optional.
type BuildOptions struct {
	Logger *slog.Logger
	Store  dataprep.ObjectStore
	Hooks  []model.ActionOption
}

// Build creates the recipe described by cfg. Step names must be registered in
// reg.
func Build(reg *Registry, cfg *RecipeConfig, opts *BuildOptions) (*dataprep.Recipe, error) {
	if cfg == nil {
		return nil, ErrConfigMustBeSet
	}

	if opts == nil {
		opts = &BuildOptions{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = ctxlog.Discard()
	}

	recipe := dataprep.NewRecipe(cfg.Name, dataprep.RecipeLogger(logger))

	for i, actionCfg := range cfg.Actions {
		action, err := buildAction(reg, recipe.Parameterization(), actionCfg, logger, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "action %d (%q)", i, actionCfg.Name)
		}

		recipe.AddAction(action)
	}

	for _, name := range sortedKeys(cfg.Parameters) {
		err := recipe.Parameterization().SetValueExpression(name, cfg.Parameters[name])
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", name)
		}
	}

	return recipe, nil
}

func buildAction(reg *Registry, params *parameterization.Parameterization, cfg ActionConfig, logger *slog.Logger, opts *BuildOptions) (*dataprep.Action, error) {
	action := dataprep.NewAction(cfg.Name,
		dataprep.ActionLogger(logger),
		dataprep.ActionStore(opts.Store),
		dataprep.ActionHooks(opts.Hooks...),
	)

	for i, stepCfg := range cfg.Steps {
		err := addStep(reg, params, action, stepCfg)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d (%q)", i, stepCfg.StepName())
		}
	}

	return action, nil
}

func addStep(reg *Registry, params *parameterization.Parameterization, action *dataprep.Action, cfg StepConfig) error {
	if (cfg.Operation == "") == (cfg.Filter == "") {
		return ErrInvalidStep
	}

	var idx int

	name := cfg.StepName()

	if cfg.Operation != "" {
		entry, ok := reg.Operation(cfg.Operation)
		if !ok {
			return errors.Wrap(ErrUnknownOperation, cfg.Operation)
		}

		obj := newParams(entry.Params, name)

		if err := setParams(obj, cfg.Params); err != nil {
			return err
		}

		idx = action.AddOperation(name, entry.Operation, obj)
	} else {
		entry, ok := reg.Filter(cfg.Filter)
		if !ok {
			return errors.Wrap(ErrUnknownFilter, cfg.Filter)
		}

		obj := newParams(entry.Params, name)

		if err := setParams(obj, cfg.Params); err != nil {
			return err
		}

		idx = action.AddFilter(name, entry.Filter, obj)
	}

	if idx == dataprep.IndexNone {
		return ErrInvalidStep
	}

	step, err := action.Step(idx)
	if err != nil {
		return err
	}

	if !cfg.IsEnabled() {
		if err := action.EnableStep(idx, false); err != nil {
			return err
		}
	}

	return bindParams(params, step.Params(), cfg.Bind)
}

func newParams(class *model.Class, stepName string) *model.Object {
	if class == nil {
		return nil
	}

	return model.NewObject(class, stepName+"_params")
}

func setParams(obj *model.Object, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	if obj == nil {
		return ErrNoParams
	}

	for _, chainSrc := range sortedKeys(values) {
		chain, err := property.ParseChain(chainSrc)
		if err != nil {
			return err
		}

		addr, err := property.Resolve(obj, chain)
		if err != nil {
			return errors.Wrapf(err, "param %q", chainSrc)
		}

		v, err := parameterization.ParseValue(chainSrc, values[chainSrc])
		if err != nil {
			return err
		}

		if err := addr.Set(v); err != nil {
			return errors.Wrapf(err, "param %q", chainSrc)
		}
	}

	return nil
}

func bindParams(params *parameterization.Parameterization, obj *model.Object, binds map[string]string) error {
	if len(binds) == 0 {
		return nil
	}

	if obj == nil {
		return ErrNoParams
	}

	for _, chainSrc := range sortedKeys(binds) {
		chain, err := property.ParseChain(chainSrc)
		if err != nil {
			return err
		}

		if err := params.Bind(obj, chain, binds[chainSrc]); err != nil {
			return errors.Wrapf(err, "bind %q", chainSrc)
		}
	}

	return nil
}

// NewRunContext creates the run context of a recipe over world and assets.
func NewRunContext(cfg *RecipeConfig, store dataprep.ObjectStore, world []*model.Object, assets ...*model.Object) *dataprep.Context {
	return dataprep.NewContext(cfg.ScratchPath, store, world, assets...)
}

// NewRebuilder creates the rebuild service honouring the configured
// concurrency.
func NewRebuilder(cfg *RecipeConfig, build rebuild.BuildFunc) (*rebuild.Parallel, error) {
	return rebuild.New(build, rebuild.Concurrency(cfg.RebuildConcurrency))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
