package parameterization

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// ParseValue evaluates src as an HCL expression without variables or functions,
// for instance "0.5", "\"steel\"" or "[1, 2, 3]". name is used in diagnostics.
func ParseValue(name, src string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), name, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, errors.Wrapf(ErrInvalidExpression, "%s: %s", name, diags.Error())
	}

	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, errors.Wrapf(ErrInvalidExpression, "%s: %s", name, diags.Error())
	}

	if !v.IsWhollyKnown() {
		return cty.NilVal, errors.Wrapf(ErrInvalidExpression, "%s: value is not known", name)
	}

	return v, nil
}
