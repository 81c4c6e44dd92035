package discretization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	fairerrors "github.com/arkilian/fairlens/internal/errors"
	"github.com/arkilian/fairlens/pkg/array"
)

var (
	mixedFields = []array.Field{
		{Name: "a", Kind: array.KindInt},
		{Name: "b", Kind: array.KindString},
		{Name: "c", Kind: array.KindFloat},
		{Name: "d", Kind: array.KindString},
	}
	numericalFields = []array.Field{
		{Name: "a", Kind: array.KindInt},
		{Name: "b", Kind: array.KindInt},
		{Name: "c", Kind: array.KindFloat},
		{Name: "d", Kind: array.KindFloat},
	}
)

func numericalArray(t *testing.T) *array.Array {
	t.Helper()
	a, err := array.Matrix([][]any{
		{0, 0, 0.08, 0.69},
		{1, 0, 0.03, 0.29},
		{0, 1, 0.99, 0.82},
		{2, 1, 0.73, 0.48},
		{1, 0, 0.36, 0.89},
		{0, 1, 0.07, 0.21},
	})
	require.NoError(t, err)
	return a
}

func numericalStructArray(t *testing.T) *array.Array {
	t.Helper()
	a, err := array.NewStructured(numericalFields, [][]any{
		{0, 0, 0.08, 0.69},
		{1, 0, 0.03, 0.29},
		{0, 1, 0.99, 0.82},
		{2, 1, 0.73, 0.48},
		{1, 0, 0.36, 0.89},
		{0, 1, 0.07, 0.21},
	})
	require.NoError(t, err)
	return a
}

func categoricalArray(t *testing.T) *array.Array {
	t.Helper()
	a, err := array.FromStrings([][]string{
		{"a", "b", "c"},
		{"a", "f", "g"},
		{"b", "c", "c"},
	})
	require.NoError(t, err)
	return a
}

func mixedArray(t *testing.T) *array.Array {
	t.Helper()
	a, err := array.NewStructured(mixedFields, [][]any{
		{0, "a", 0.08, "a"},
		{0, "f", 0.03, "bb"},
		{1, "a", 0.73, "b"},
		{0, "b", 0.36, "a"},
		{1, "f", 0.82, "bb"},
		{1, "b", 0.21, "b"},
	})
	require.NoError(t, err)
	return a
}

// identity discretizes by returning its input after validation.
type identity struct {
	*Base
}

func (d identity) Discretize(data *array.Array) (*array.Array, error) {
	if err := d.ValidateDiscretizeInput(data); err != nil {
		return nil, err
	}
	return data, nil
}

// incomplete embeds Base but never provides Discretize.
type incomplete struct {
	*Base
}

func TestNewBase_Numerical(t *testing.T) {
	b, err := NewBase(numericalArray(t), nil)
	require.NoError(t, err)

	assert.False(t, b.IsStructured())
	assert.Equal(t, []array.ColumnID{}, b.CategoricalIndices())
	assert.Equal(t, array.Positions(0, 1, 2, 3), b.NumericalIndices())
	assert.Equal(t, 4, b.FeaturesNumber())
	assert.Empty(t, b.Warnings())

	b, err = NewBase(numericalArray(t), array.Positions(0, 1))
	require.NoError(t, err)
	assert.Equal(t, array.Positions(0, 1), b.CategoricalIndices())
	assert.Equal(t, array.Positions(2, 3), b.NumericalIndices())
	assert.Equal(t, 4, b.FeaturesNumber())
}

func TestNewBase_NumericalStructured(t *testing.T) {
	b, err := NewBase(numericalStructArray(t), array.Names("c", "a"))
	require.NoError(t, err)

	assert.True(t, b.IsStructured())
	assert.Equal(t, array.Names("a", "c"), b.CategoricalIndices())
	assert.Equal(t, array.Names("b", "d"), b.NumericalIndices())
	assert.Equal(t, 4, b.FeaturesNumber())
}

func TestNewBase_CategoricalAutoIncluded(t *testing.T) {
	b, err := NewBase(categoricalArray(t), array.Positions(0))
	require.NoError(t, err)

	assert.Equal(t, array.Positions(0, 1, 2), b.CategoricalIndices())
	assert.Equal(t, []array.ColumnID{}, b.NumericalIndices())
	assert.Equal(t, []string{StringColumnsWarning}, b.Warnings())
}

func TestNewBase_MixedWarnsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	b, err := NewBase(mixedArray(t), array.Names("a"), WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, array.Names("a", "b", "d"), b.CategoricalIndices())
	assert.Equal(t, array.Names("c"), b.NumericalIndices())
	assert.Len(t, b.Warnings(), 1)

	entries := logs.FilterMessage(StringColumnsWarning).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "['b', 'd']", entries[0].ContextMap()["auto_included"])
}

func TestNewBase_NoWarningWhenStringsSelected(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	b, err := NewBase(mixedArray(t), array.Names("b", "d"), WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Empty(t, b.Warnings())
	assert.Zero(t, logs.Len())
	assert.Equal(t, array.Names("a", "c"), b.NumericalIndices())
}

func TestNewBase_PropagatesValidationErrors(t *testing.T) {
	vector, err := array.Vector(0.1, 0.2)
	require.NoError(t, err)
	_, err = NewBase(vector, nil)
	assert.True(t, errors.Is(err, fairerrors.ErrNotTwoDimensional))

	objects, err := array.Matrix([][]any{{nil, 1}})
	require.NoError(t, err)
	_, err = NewBase(objects, nil)
	assert.True(t, errors.Is(err, fairerrors.ErrNotBaseType))

	_, err = NewBase(numericalArray(t), array.Positions(1, 9))
	assert.True(t, errors.Is(err, fairerrors.ErrInvalidIndices))
	assert.Equal(t, "The following indices are invalid for the input dataset: [9].", fairerrors.GetMessage(err))
}

func TestBuild(t *testing.T) {
	d, err := Build(numericalArray(t), nil, func(b *Base) (any, error) {
		return identity{Base: b}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, d)

	row := numericalArray(t).Row(0)
	out, err := d.Discretize(row)
	require.NoError(t, err)
	assert.Same(t, row, out)
}

func TestBuild_RejectsMissingDiscretize(t *testing.T) {
	d, err := Build(numericalArray(t), nil, func(b *Base) (any, error) {
		return incomplete{Base: b}, nil
	})
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, fairerrors.ErrMissingDiscretize))
	assert.Contains(t, err.Error(), "Can't instantiate abstract discretizer")
	assert.Contains(t, err.Error(), "incomplete")
}

func TestBuild_PropagatesErrors(t *testing.T) {
	called := false
	_, err := Build(numericalArray(t), array.Positions(5), func(b *Base) (any, error) {
		called = true
		return identity{Base: b}, nil
	})
	assert.True(t, errors.Is(err, fairerrors.ErrInvalidIndices))
	assert.False(t, called, "constructor must not run on an invalid dataset")

	ctorErr := errors.New("boom")
	_, err = Build(numericalArray(t), nil, func(b *Base) (any, error) {
		return nil, ctorErr
	})
	assert.ErrorIs(t, err, ctorErr)
}

func TestValidateDiscretizeInput(t *testing.T) {
	b, err := NewBase(numericalArray(t), nil)
	require.NoError(t, err)

	assert.NoError(t, b.ValidateDiscretizeInput(numericalArray(t)))
	assert.NoError(t, b.ValidateDiscretizeInput(numericalArray(t).Row(3)))

	cube, err := array.New([]int{1, 1, 4}, []any{0.1, 0.2, 0.3, 0.4})
	require.NoError(t, err)
	err = b.ValidateDiscretizeInput(cube)
	assert.True(t, errors.Is(err, fairerrors.ErrNotRowLike))
	assert.Equal(t, MsgDataShape, fairerrors.GetMessage(err))

	text, err := array.Vector("a", "b", "c", "d")
	require.NoError(t, err)
	err = b.ValidateDiscretizeInput(text)
	assert.True(t, errors.Is(err, fairerrors.ErrDTypeMismatch))
	assert.Equal(t, MsgDataDType, fairerrors.GetMessage(err))

	short, err := array.Vector(0.1, 0.2, 0.3)
	require.NoError(t, err)
	err = b.ValidateDiscretizeInput(short)
	assert.True(t, errors.Is(err, fairerrors.ErrFeatureCount))
	assert.Equal(t, MsgDataFeatures, fairerrors.GetMessage(err))

	wide, err := array.FromFloats([][]float64{{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	err = b.ValidateDiscretizeInput(wide)
	assert.True(t, errors.Is(err, fairerrors.ErrFeatureCount))
}

func TestValidateDiscretizeInput_Structured(t *testing.T) {
	b, err := NewBase(mixedArray(t), array.Names("b", "d"))
	require.NoError(t, err)

	assert.NoError(t, b.ValidateDiscretizeInput(mixedArray(t)))
	assert.NoError(t, b.ValidateDiscretizeInput(mixedArray(t).Row(0)))

	subset, err := mixedArray(t).SelectFields("a", "b", "c")
	require.NoError(t, err)
	err = b.ValidateDiscretizeInput(subset)
	assert.True(t, errors.Is(err, fairerrors.ErrDTypeMismatch))

	err = b.ValidateDiscretizeInput(numericalStructArray(t))
	assert.True(t, errors.Is(err, fairerrors.ErrDTypeMismatch))

	err = b.ValidateDiscretizeInput(numericalArray(t))
	assert.True(t, errors.Is(err, fairerrors.ErrDTypeMismatch))
}
