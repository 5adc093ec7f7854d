package parser

import (
	"testing"

	"github.com/nulzo/model-catalog-api/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	Register("test-kind", func(d Descriptor) (ParseFunc, error) {
		return func(payload []byte) ([]api.ModelInfo, error) {
			return []api.ModelInfo{{ID: d.Key + "/m1", Provider: d.Name}}, nil
		}, nil
	})

	f, err := Get("test-kind")
	require.NoError(t, err)

	parse, err := f(Descriptor{Key: "p", Name: "P"})
	require.NoError(t, err)

	models, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "p/m1", models[0].ID)
	assert.Contains(t, Kinds(), "test-kind")

	assert.Panics(t, func() {
		Register("test-kind", nil)
	})

	_, err = Get("missing")
	assert.Error(t, err)
}

func TestIsPremium(t *testing.T) {
	assert.True(t, IsPremium("0.000015"))
	assert.True(t, IsPremium("0.0000001", "0.00001"))
	assert.False(t, IsPremium("0.0000025", "0.00000999"))
	assert.False(t, IsPremium("", "not-a-price"))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive("0.005"))
	assert.False(t, IsPositive("0"))
	assert.False(t, IsPositive("-1"))
	assert.False(t, IsPositive(""))
}
