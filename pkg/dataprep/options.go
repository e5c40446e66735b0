package dataprep

import (
	"log/slog"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/parameterization"
)

type ActionOption func(a *Action)

// ActionLogger sets the logger used when the run context has none.
func ActionLogger(logger *slog.Logger) ActionOption {
	return func(a *Action) {
		a.logger = logger
	}
}

// ActionHooks registers hooks called while the action runs.
func ActionHooks(hooks ...model.ActionOption) ActionOption {
	return func(a *Action) {
		a.hooks = append(a.hooks, hooks...)
	}
}

// ActionStore sets the object store Execute builds its run context with.
func ActionStore(store ObjectStore) ActionOption {
	return func(a *Action) {
		a.store = store
	}
}

type RecipeOption func(r *Recipe)

// RecipeLogger sets the logger of the recipe and of its parameterization.
func RecipeLogger(logger *slog.Logger) RecipeOption {
	return func(r *Recipe) {
		r.logger = logger
	}
}

// RecipeParameterization replaces the parameterization of the recipe.
func RecipeParameterization(p *parameterization.Parameterization) RecipeOption {
	return func(r *Recipe) {
		r.params = p
	}
}
