package dataprep_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/memstore"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

func newMeshClass() *model.Class {
	return model.NewClass("Mesh", nil)
}

func newParamsClass(t *testing.T) *model.Class {
	t.Helper()

	c := model.NewClass("SubstituteParams", nil)
	_, err := c.AddField("material", cty.String)
	require.NoError(t, err)

	return c
}

func newParams(t *testing.T, c *model.Class, material string) *model.Object {
	t.Helper()

	obj := model.NewObject(c, "params")
	require.NoError(t, obj.Set("material", cty.StringVal(material)))

	return obj
}

// newWorld returns a store holding one actor per name, in order.
func newWorld(t *testing.T, names ...string) (*memstore.Store, []*model.Object) {
	t.Helper()

	s := memstore.New()
	cls := model.NewClass("StaticMeshActor", nil)
	actors := make([]*model.Object, len(names))

	for i, name := range names {
		actor, err := s.SpawnActor(cls, name)
		require.NoError(t, err)
		actors[i] = actor
	}

	return s, actors
}

// trace records which steps ran.
type trace struct {
	ran []string
}

func (tr *trace) op(name string) dataprep.Operation {
	return dataprep.OperationFunc(func(_ context.Context, _ *dataprep.OperationContext) error {
		tr.ran = append(tr.ran, name)

		return nil
	})
}

func (tr *trace) filter(name string) dataprep.Filter {
	return dataprep.FilterFunc(func(_ context.Context, _ *model.Object, objects []*model.Object) ([]*model.Object, error) {
		tr.ran = append(tr.ran, name)

		return objects, nil
	})
}

type batchRecorder struct {
	batches [][]*model.Object
}

func (b *batchRecorder) Rebuild(_ context.Context, assets []*model.Object, _ dataprep.ProgressReporter) error {
	b.batches = append(b.batches, append([]*model.Object(nil), assets...))

	return nil
}

type notification struct {
	worldChanged  bool
	assetsChanged bool
	assets        []*model.Object
}

func recordNotifications(runCtx *dataprep.Context) *[]notification {
	var got []notification

	runCtx.OnWorkingSetChanged = func(worldChanged, assetsChanged bool, assets []*model.Object) {
		got = append(got, notification{worldChanged: worldChanged, assetsChanged: assetsChanged, assets: assets})
	}

	return &got
}

type hookRecorder struct {
	calls []string
	// failOn makes the matching call return an error.
	failOn string
}

var _ model.ActionOption = (*hookRecorder)(nil)

func (h *hookRecorder) record(call string) error {
	h.calls = append(h.calls, call)
	if call == h.failOn {
		return errors.Errorf("%s failed", call)
	}

	return nil
}

func (h *hookRecorder) New() error {
	return h.record("new")
}

func (h *hookRecorder) PrepareStep(parent, step *model.StepInfo) error {
	return h.record(fmt.Sprintf("prepare %s->%s", parent.Name, step.Name))
}

func (h *hookRecorder) OnStepOutput(step *model.StepInfo, _, _ time.Duration, selected int) error {
	return h.record(fmt.Sprintf("output %s %d", step.Name, selected))
}

func (h *hookRecorder) Finish() error {
	return h.record("finish")
}

func names(objs []*model.Object) []string {
	out := make([]string, len(objs))
	for i, obj := range objs {
		out[i] = obj.Name()
	}

	return out
}
