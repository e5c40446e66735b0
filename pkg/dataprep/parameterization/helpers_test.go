package parameterization_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

func newSubstituteClass(t *testing.T) *model.Class {
	t.Helper()

	c := model.NewClass("SubstituteMaterial", nil)
	_, err := c.AddField("material", cty.String)
	require.NoError(t, err)
	_, err = c.AddField("roughness", cty.Number)
	require.NoError(t, err)
	_, err = c.AddField("weights", cty.List(cty.Number))
	require.NoError(t, err)

	return c
}

func newSubstitute(t *testing.T, c *model.Class, name, material string) *model.Object {
	t.Helper()

	obj := model.NewObject(c, name)
	require.NoError(t, obj.Set("material", cty.StringVal(material)))
	require.NoError(t, obj.Set("weights", cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})))

	return obj
}

func getString(t *testing.T, obj *model.Object, chain string) string {
	t.Helper()

	c, err := property.ParseChain(chain)
	require.NoError(t, err)

	addr, err := property.Resolve(obj, c)
	require.NoError(t, err)

	v, err := addr.Get()
	require.NoError(t, err)

	return v.AsString()
}

type recorder struct {
	aboutToChange []*model.Class
	changed       []map[*model.Object]*model.Object
	reloads       int
}

func (r *recorder) SchemaAboutToChange(old *model.Class) {
	r.aboutToChange = append(r.aboutToChange, old)
}

func (r *recorder) SchemaChanged(oldToNew map[*model.Object]*model.Object) {
	r.changed = append(r.changed, oldToNew)
}

func (r *recorder) ReloadValues() {
	r.reloads++
}
