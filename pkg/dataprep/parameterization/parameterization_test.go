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

func TestBindOrdersSchemaAlphabetically(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")
	d := newSubstitute(t, c, "d", "glass")

	p := parameterization.New()
	first := p.Schema()

	require.NoError(t, p.Bind(b, property.Path("material"), "B"))
	require.NoError(t, p.Bind(a, property.Path("material"), "A"))
	require.NoError(t, p.Bind(d, property.Path("material"), "C"))

	assert.Equal(t, []string{"A", "B", "C"}, p.Names())
	assert.Equal(t, "Parameterization", p.Schema().Name())
	assert.True(t, first.IsStale())
	assert.False(t, first.IsDiscoverable())
	assert.Equal(t, "Parameterization_REINST_1", first.Name())
	assert.False(t, p.Schema().IsStale())
}

func TestBindSeedsCanonicalValue(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Chain{property.Element("weights", 1)}, "Weight"))

	v, err := p.Value("Material")
	require.NoError(t, err)
	assert.Equal(t, "steel", v.AsString())

	w, err := p.Value("Weight")
	require.NoError(t, err)
	assert.True(t, w.RawEquals(cty.NumberIntVal(2)))

	kind, ok := p.Kind("Weight")
	require.True(t, ok)
	assert.True(t, kind.Equal(model.ValueKind(cty.Number)))

	name, ok := p.ParameterName(a, property.Path("material"))
	require.True(t, ok)
	assert.Equal(t, "Material", name)
	assert.True(t, p.IsBound(a, property.Path("material")))
	assert.False(t, p.IsBound(a, property.Path("roughness")))
}

func TestBindFanIn(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))

	schema := p.Schema()
	require.NoError(t, p.Bind(b, property.Path("material"), "Material"))

	assert.Same(t, schema, p.Schema(), "fan-in does not rebuild")
	assert.Len(t, p.Bindings(), 2)

	v, err := p.Value("Material")
	require.NoError(t, err)
	assert.Equal(t, "steel", v.AsString())
	assert.Equal(t, "steel", getString(t, b, "material"), "new binding receives the parameter value")
	assert.Equal(t, "steel", getString(t, a, "material"))
}

func TestBindErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		chain   property.Chain
		name    string
		wantErr error
	}{
		"kind mismatch":   {chain: property.Path("roughness"), name: "Material", wantErr: property.ErrKindMismatch},
		"unresolvable":    {chain: property.Path("metallic"), name: "Metallic", wantErr: property.ErrUnresolvable},
		"empty name":      {chain: property.Path("roughness"), name: "", wantErr: parameterization.ErrInvalidName},
		"invalid chain":   {chain: property.Chain{}, name: "X", wantErr: property.ErrInvalidChain},
		"out of range":    {chain: property.Chain{property.Element("weights", 5)}, name: "W", wantErr: property.ErrUnresolvable},
		"element on text": {chain: property.Chain{property.Element("material", 0)}, name: "W", wantErr: property.ErrUnresolvable},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := newSubstituteClass(t)
			a := newSubstitute(t, c, "a", "steel")
			b := newSubstitute(t, c, "b", "wood")

			p := parameterization.New()
			require.NoError(t, p.Bind(a, property.Path("material"), "Material"))

			err := p.Bind(b, tc.chain, tc.name)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, []string{"Material"}, p.Names())
			assert.False(t, p.IsBound(b, tc.chain))
		})
	}
}

func TestBindThenUnbind(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		shared    bool
		wantNames []string
	}{
		"last binding removes the field": {wantNames: []string{}},
		"shared name keeps the field":    {shared: true, wantNames: []string{"P"}},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := newSubstituteClass(t)
			a := newSubstitute(t, c, "a", "steel")
			b := newSubstitute(t, c, "b", "wood")

			p := parameterization.New()
			if tc.shared {
				require.NoError(t, p.Bind(b, property.Path("material"), "P"))
			}

			before := len(p.Names())

			require.NoError(t, p.Bind(a, property.Path("material"), "P"))
			require.NoError(t, p.Unbind(a, property.Path("material")))

			assert.Equal(t, tc.wantNames, p.Names())

			if tc.shared {
				assert.Equal(t, before, len(p.Names()))
			}

			err := p.Unbind(a, property.Path("material"))
			require.ErrorIs(t, err, parameterization.ErrNotBound)
		})
	}
}

func TestBindMovesBindingToNewName(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Old"))
	require.NoError(t, p.Bind(a, property.Path("material"), "New"))

	assert.Equal(t, []string{"New"}, p.Names())

	name, ok := p.ParameterName(a, property.Path("material"))
	require.True(t, ok)
	assert.Equal(t, "New", name)

	schema := p.Schema()
	require.NoError(t, p.Bind(a, property.Path("material"), "New"))
	assert.Same(t, schema, p.Schema())
}

func TestBindDropsContainedBindings(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Chain{property.Element("weights", 0)}, "First"))
	require.NoError(t, p.Bind(a, property.Chain{property.Element("weights", 1)}, "Second"))
	require.NoError(t, p.Bind(a, property.Path("weights"), "Weights"))

	assert.Equal(t, []string{"Weights"}, p.Names())
	assert.Len(t, p.Bindings(), 1)
}

func TestRebuildPreservesValues(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	rec := &recorder{}
	p := parameterization.New()
	p.AddObserver(rec)

	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.SetValue("Material", cty.StringVal("copper")))

	oldCanonical := p.Canonical()
	oldSchema := p.Schema()

	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))

	v, err := p.Value("Material")
	require.NoError(t, err)
	assert.Equal(t, "copper", v.AsString())

	require.Len(t, rec.changed, 2)
	assert.Same(t, oldSchema, rec.aboutToChange[1])
	assert.Same(t, p.Canonical(), rec.changed[1][oldCanonical])
	assert.NotSame(t, oldCanonical, p.Canonical())

	old, err := oldCanonical.Get("Material")
	require.NoError(t, err)
	assert.Equal(t, "copper", old.AsString(), "old holders stay readable")

	p.RemoveObserver(rec)
	require.NoError(t, p.Unbind(a, property.Path("roughness")))
	assert.Len(t, rec.changed, 2)
}

func TestSetValuePushesToBindings(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(b, property.Path("material"), "Material"))

	require.NoError(t, p.SetValue("Material", cty.StringVal("gold")))

	assert.Equal(t, "gold", getString(t, a, "material"))
	assert.Equal(t, "gold", getString(t, b, "material"))

	err := p.SetValue("Missing", cty.True)
	require.ErrorIs(t, err, parameterization.ErrUnknownParameter)

	_, err = p.Value("Missing")
	require.ErrorIs(t, err, parameterization.ErrUnknownParameter)
}

func TestSetValueExpression(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))
	require.NoError(t, p.Bind(a, property.Path("weights"), "Weights"))

	require.NoError(t, p.SetValueExpression("Roughness", "0.25"))
	require.NoError(t, p.SetValueExpression("Weights", "[3, 4, 5]"))

	r, err := a.Get("roughness")
	require.NoError(t, err)
	assert.True(t, r.RawEquals(cty.MustParseNumberVal("0.25")))

	w, err := a.Get("weights")
	require.NoError(t, err)
	assert.Equal(t, 3, w.LengthInt())

	err = p.SetValueExpression("Roughness", "\"rough\"")
	require.ErrorIs(t, err, model.ErrNotConvertible)

	err = p.SetValueExpression("Roughness", "1 +")
	require.ErrorIs(t, err, parameterization.ErrInvalidExpression)
}

func TestPushPrunesDeadBindings(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(b, property.Path("material"), "Material"))

	b.Destroy()
	assert.Equal(t, 1, p.PushValueToBindings("Material"))
	assert.Equal(t, []string{"Material"}, p.Names())
	assert.Len(t, p.Bindings(), 1)

	a.Destroy()
	assert.Equal(t, 0, p.PushValueToBindings("Material"))
	assert.Empty(t, p.Names())
}

func TestPushPrunesBindingAfterClassSwap(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))

	swapped := model.NewClass("SubstituteMaterial", nil)
	_, err := swapped.AddField("roughness", cty.String)
	require.NoError(t, err)
	a.Reinstance(swapped)

	assert.Equal(t, 0, p.PushValueToBindings("Roughness"))
	assert.Empty(t, p.Names())
}

func TestOnObjectPostEdit(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("weights"), "Weights"))
	require.NoError(t, p.Bind(b, property.Path("weights"), "Weights"))

	// An element edit of a bound container updates the whole parameter.
	require.NoError(t, a.Set("weights", cty.ListVal([]cty.Value{cty.NumberIntVal(7), cty.NumberIntVal(2)})))
	p.OnObjectPostEdit(a, property.Chain{property.Element("weights", 0)})

	v, err := p.Value("Weights")
	require.NoError(t, err)
	assert.True(t, v.Index(cty.NumberIntVal(0)).RawEquals(cty.NumberIntVal(7)))

	bw, err := b.Get("weights")
	require.NoError(t, err)
	assert.True(t, bw.Index(cty.NumberIntVal(0)).RawEquals(cty.NumberIntVal(1)), "bound objects are not pushed to")

	// An edit of the canonical holder goes to every binding.
	require.NoError(t, p.Canonical().Set("Weights", cty.ListVal([]cty.Value{cty.NumberIntVal(9)})))
	p.OnObjectPostEdit(p.Canonical(), property.Path("Weights"))

	bw, err = b.Get("weights")
	require.NoError(t, err)
	assert.Equal(t, 1, bw.LengthInt())

	// Unbound properties are ignored.
	p.OnObjectPostEdit(a, property.Path("material"))
	p.OnObjectPostEdit(nil, property.Path("material"))
}

func TestExistingNamesForKind(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))
	require.NoError(t, p.Bind(a, property.Path("weights"), "Weights"))

	valid, invalid := p.ExistingNamesForKind(model.ValueKind(cty.Number))
	assert.Equal(t, []string{"Roughness"}, valid)
	assert.Equal(t, []string{"Material", "Weights"}, invalid)
}

func TestRemoveBindingsFromObjects(t *testing.T) {
	t.Parallel()

	c := newSubstituteClass(t)
	a := newSubstitute(t, c, "a", "steel")
	b := newSubstitute(t, c, "b", "wood")

	p := parameterization.New()
	require.NoError(t, p.Bind(a, property.Path("material"), "Material"))
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))
	require.NoError(t, p.Bind(b, property.Path("material"), "Material"))

	p.RemoveBindingsFromObjects(a)

	assert.Equal(t, []string{"Material"}, p.Names())
	assert.False(t, p.IsBound(a, property.Path("material")))
	assert.True(t, p.IsBound(b, property.Path("material")))

	// Rebinding a released object gets it tracked again.
	require.NoError(t, p.Bind(a, property.Path("roughness"), "Roughness"))
	assert.Equal(t, []string{"Material", "Roughness"}, p.Names())
}
