package dataprep

import (
	"context"
	"path"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// ClassFilter keeps the objects whose class is, or derives from, a class named
// name.
func ClassFilter(name string) Filter {
	return FilterFunc(func(_ context.Context, _ *model.Object, objects []*model.Object) ([]*model.Object, error) {
		out := make([]*model.Object, 0, len(objects))

		for _, obj := range objects {
			for cls := obj.Class(); cls != nil; cls = cls.Super() {
				if cls.Name() == name {
					out = append(out, obj)

					break
				}
			}
		}

		return out, nil
	})
}

// NamePatternFilter keeps the objects whose name matches the path.Match pattern
// held by the string field of the step parameters. An empty pattern keeps
// everything.
func NamePatternFilter(field string) Filter {
	return FilterFunc(func(_ context.Context, params *model.Object, objects []*model.Object) ([]*model.Object, error) {
		if params == nil {
			return nil, errors.Wrap(ErrObjectMustBeSet, "name pattern filter needs parameters")
		}

		value, err := params.Get(field)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read pattern field %q", field)
		}

		if !value.IsKnown() || value.IsNull() || !value.Type().Equals(cty.String) || value.AsString() == "" {
			return objects, nil
		}

		pattern := value.AsString()
		out := make([]*model.Object, 0, len(objects))

		for _, obj := range objects {
			ok, err := path.Match(pattern, obj.Name())
			if err != nil {
				return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
			}

			if ok {
				out = append(out, obj)
			}
		}

		return out, nil
	})
}

// AssetFilter keeps the assets, or the world actors when inverse is set.
func AssetFilter(inverse bool) Filter {
	return FilterFunc(func(_ context.Context, _ *model.Object, objects []*model.Object) ([]*model.Object, error) {
		out := make([]*model.Object, 0, len(objects))

		for _, obj := range objects {
			if obj.IsAsset() != inverse {
				out = append(out, obj)
			}
		}

		return out, nil
	})
}
