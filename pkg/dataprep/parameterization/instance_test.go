package parameterization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/parameterization"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

func TestInstanceApplyOntoDuplicates(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(b, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Chain{property.Element("weights", 0)}, "Weight"))

	inst := parameterization.NewInstance(p)
	defer inst.Close()

	got, err := inst.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "steel", got.AsString(), "seeded from canonical")

	require.NoError(t, inst.Set("Material", cty.StringVal("gold")))
	require.NoError(t, inst.Set("Weight", cty.NumberIntVal(8)))

	dupA := a.Clone("a_copy")
	applied, err := inst.Apply(map[*model.Object]*model.Object{a: dupA})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	assert.Equal(t, "gold", getString(t, dupA, "material"))
	w, err := dupA.Get("weights")
	require.NoError(t, err)
	assert.True(t, w.Index(cty.NumberIntVal(0)).RawEquals(cty.NumberIntVal(8)))

	assert.Equal(t, "steel", getString(t, a, "material"), "source untouched")
	assert.Equal(t, "steel", getString(t, b, "material"), "not duplicated")

	canonical, err := p.Value("Material")
	require.NoError(t, err)
	assert.Equal(t, "steel", canonical.AsString(), "canonical untouched")
}

func TestInstanceSurvivesRebuild(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))

	inst := parameterization.NewInstance(p)
	require.NoError(t, inst.Set("Material", cty.StringVal("gold")))

	require.NoError(t, a.Set("roughness", cty.NumberIntVal(3)))
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))

	holder, err := inst.Holder()
	require.NoError(t, err)
	assert.Same(t, p.Schema(), holder.Class())

	got, err := inst.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "gold", got.AsString())

	r, err := inst.Get("Roughness")
	require.NoError(t, err)
	assert.True(t, r.RawEquals(cty.NumberIntVal(3)), "new parameter starts from canonical")

	require.NoError(t, p.Unbind(a, property.Path("material")))

	_, err = inst.Get("Material")
	require.ErrorIs(t, err, parameterization.ErrUnknownParameter)
}

func TestInstanceMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Path("weights"), "Weights"))

	first := parameterization.NewInstance(p)
	require.NoError(t, first.Set("Material", cty.StringVal("gold")))
	require.NoError(t, first.Set("Weights", cty.ListVal([]cty.Value{cty.NumberIntVal(4)})))

	data, err := first.MarshalBinary()
	require.NoError(t, err)
	first.Close()

	second := parameterization.NewInstance(p)
	require.NoError(t, second.UnmarshalBinary(data))

	m, err := second.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "gold", m.AsString())

	w, err := second.Get("Weights")
	require.NoError(t, err)
	assert.Equal(t, 1, w.LengthInt())

	require.ErrorIs(t, second.UnmarshalBinary([]byte{0xc1}), parameterization.ErrInvalidData)
}

func TestInstanceKeepsValuesAcrossLoad(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))

	data, err := p.MarshalBinary()
	require.NoError(t, err)

	inst := parameterization.NewInstance(p)
	require.NoError(t, inst.Set("Material", cty.StringVal("gold")))

	require.NoError(t, p.Load(data, lookupOf(a)))

	m, err := inst.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "gold", m.AsString())
}

func TestInstanceSetSource(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	first := parameterization.New()
	require.NoError(t, first.Bind(a, property.Path("material"), "Material"))

	second := parameterization.New()
	require.NoError(t, second.Bind(b, property.Path("material"), "Material"))
	require.NoError(t, second.Bind(b, property.Path("roughness"), "Roughness"))

	inst := parameterization.NewInstance(first)
	require.NoError(t, inst.Set("Material", cty.StringVal("gold")))

	inst.SetSource(second)
	assert.Same(t, second, inst.Source())

	m, err := inst.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "gold", m.AsString(), "local values migrate")

	_, err = inst.Get("Roughness")
	require.NoError(t, err)

	// The old source no longer migrates the instance.
	require.NoError(t, first.Bind(a, property.Path("roughness"), "Other"))

	inst.Close()
	_, err = inst.Get("Material")
	require.ErrorIs(t, err, parameterization.ErrSourceMustBeSet)

	_, err = parameterization.NewInstance(nil).Apply(nil)
	require.ErrorIs(t, err, parameterization.ErrSourceMustBeSet)
}
