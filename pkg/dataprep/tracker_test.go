package dataprep_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

func TestAddAssetTwiceInSameCategory(t *testing.T) {
	t.Parallel()

	s, world := newWorld(t, "a")
	source := model.NewAsset(newMeshClass(), "/Game", "chair")
	rebuilder := &batchRecorder{}

	var added []*model.Object

	action := dataprep.NewAction("add")
	action.AddOperation("add", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		for i := 0; i < 2; i++ {
			asset, err := opCtx.AddAsset(source, "M")
			if err != nil {
				return err
			}

			added = append(added, asset)
		}

		return nil
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, world)
	runCtx.Rebuilder = rebuilder

	require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	require.Len(t, added, 2)
	assert.Equal(t, "/Scratch/Mesh/M", added[0].Path())
	assert.Equal(t, "/Scratch/Mesh/M_1", added[1].Path())
	assert.Equal(t, added, runCtx.Assets.List())
	assert.Equal(t, []string{"a", "M", "M_1"}, names(action.Selection()))
	assert.Equal(t, [][]*model.Object{added}, rebuilder.batches)
}

func TestModifiedAssetRebuiltOncePerBatch(t *testing.T) {
	t.Parallel()

	s, _ := newWorld(t)
	source := model.NewAsset(newMeshClass(), "/Game", "chair")
	rebuilder := &batchRecorder{}

	var m *model.Object

	action := dataprep.NewAction("once")
	action.AddOperation("add", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		var err error

		m, err = opCtx.AddAsset(source, "M")
		if err != nil {
			return err
		}

		opCtx.AssetsModified(m)

		return nil
	}), nil)
	action.AddOperation("modify", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		opCtx.AssetsModified(m, m)

		return nil
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, nil)
	runCtx.Rebuilder = rebuilder

	require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	require.NotNil(t, m)
	assert.Equal(t, [][]*model.Object{{m}, {m}}, rebuilder.batches)
}

func TestDeleteSupersedesAdded(t *testing.T) {
	t.Parallel()

	s, world := newWorld(t, "a")
	rebuilder := &batchRecorder{}

	var x, y *model.Object

	action := dataprep.NewAction("delete")
	action.AddOperation("create", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		var err error

		x, err = opCtx.CreateAsset(newMeshClass(), "X")
		if err != nil {
			return err
		}

		y, err = opCtx.CreateAsset(newMeshClass(), "Y")
		if err != nil {
			return err
		}

		opCtx.AssetsModified(x)
		opCtx.DeleteObjects(x)
		opCtx.AssetsModified(x)

		return nil
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, world)
	runCtx.Rebuilder = rebuilder
	notifications := recordNotifications(runCtx)

	require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	assert.Equal(t, []string{"a", "Y"}, names(action.Selection()))
	assert.Equal(t, [][]*model.Object{{y}}, rebuilder.batches)
	assert.False(t, runCtx.Assets.Contains(x))
	assert.False(t, x.IsValid())
	assert.True(t, y.IsValid())

	require.Len(t, *notifications, 1)
	assert.Equal(t, notification{assetsChanged: true, assets: []*model.Object{y}}, (*notifications)[0])
}

func TestRemoveObject(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		localOnly         bool
		wantWorld         []string
		wantNotifications []notification
	}{
		"shared removal": {
			localOnly:         false,
			wantWorld:         []string{"b"},
			wantNotifications: []notification{{worldChanged: true, assets: []*model.Object{}}},
		},
		"local removal": {
			localOnly: true,
			wantWorld: []string{"a", "b"},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, world := newWorld(t, "a", "b")

			action := dataprep.NewAction("remove")
			action.AddOperation("remove", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
				opCtx.RemoveObject(world[0], tc.localOnly)

				return nil
			}), nil)

			runCtx := dataprep.NewContext("/Scratch", s, world)
			notifications := recordNotifications(runCtx)

			require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

			assert.Equal(t, []string{"b"}, names(action.Selection()))
			assert.Equal(t, tc.wantWorld, names(runCtx.World))
			assert.Equal(t, tc.wantNotifications, *notifications)
			assert.True(t, world[0].IsValid())
		})
	}
}

func TestDeleteWinsOverLocalRemoval(t *testing.T) {
	t.Parallel()

	s, world := newWorld(t, "a", "b")

	action := dataprep.NewAction("delete")
	action.AddOperation("delete", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		opCtx.RemoveObject(world[0], true)
		opCtx.DeleteObjects(world[0])

		return nil
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, world)

	require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	assert.Equal(t, []string{"b"}, names(action.Selection()))
	assert.Equal(t, []string{"b"}, names(runCtx.World))
	assert.False(t, world[0].IsValid())
	assert.Equal(t, []*model.Object{world[1]}, s.World())
}

func TestCreateActor(t *testing.T) {
	t.Parallel()

	s, world := newWorld(t, "lamp")

	var created *model.Object

	action := dataprep.NewAction("spawn")
	action.AddOperation("spawn", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		var err error
		created, err = opCtx.CreateActor(model.NewClass("Light", nil), "lamp")

		return err
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, world)
	notifications := recordNotifications(runCtx)

	require.NoError(t, action.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	require.NotNil(t, created)
	assert.Equal(t, "lamp_1", created.Name())
	assert.Equal(t, []string{"lamp", "lamp_1"}, names(runCtx.World))
	assert.Equal(t, []string{"lamp", "lamp_1"}, names(action.Selection()))
	require.Len(t, *notifications, 1)
	assert.True(t, (*notifications)[0].worldChanged)
	assert.False(t, (*notifications)[0].assetsChanged)
}

func TestOperationContextWithoutStore(t *testing.T) {
	t.Parallel()

	var errs []error

	action := dataprep.NewAction("nostore")
	action.AddOperation("create", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		_, err := opCtx.CreateAsset(newMeshClass(), "X")
		errs = append(errs, err)
		_, err = opCtx.CreateActor(newMeshClass(), "X")
		errs = append(errs, err)
		_, err = opCtx.AddAsset(nil, "X")
		errs = append(errs, err)
		_, err = opCtx.CreateAsset(nil, "X")
		errs = append(errs, err)

		return nil
	}), nil)

	_, err := action.Execute(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, errs, 4)
	assert.ErrorIs(t, errs[0], dataprep.ErrStoreMustBeSet)
	assert.ErrorIs(t, errs[1], dataprep.ErrStoreMustBeSet)
	assert.ErrorIs(t, errs[2], dataprep.ErrObjectMustBeSet)
	assert.ErrorIs(t, errs[3], dataprep.ErrClassMustBeSet)
}

func TestSharedContextAcrossActions(t *testing.T) {
	t.Parallel()

	s, world := newWorld(t, "a")

	var created *model.Object

	first := dataprep.NewAction("first")
	first.AddOperation("create", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		var err error
		created, err = opCtx.CreateAsset(newMeshClass(), "X")

		return err
	}), nil)

	var seen []string

	second := dataprep.NewAction("second")
	second.AddOperation("inspect", dataprep.OperationFunc(func(_ context.Context, opCtx *dataprep.OperationContext) error {
		seen = names(opCtx.Objects())

		return nil
	}), nil)

	runCtx := dataprep.NewContext("/Scratch", s, world)

	require.NoError(t, first.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))
	require.NoError(t, second.ExecuteAction(context.Background(), runCtx, dataprep.IndexNone, false))

	assert.Equal(t, []string{"a", "X"}, seen)
	assert.True(t, runCtx.Assets.Contains(created))
}
