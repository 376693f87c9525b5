package payments

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(2000), MinorUnits(20))
	assert.Equal(t, int64(0), MinorUnits(0))
	assert.Equal(t, int64(-150), MinorUnits(-1.5))
}

func TestParsePrice(t *testing.T) {
	for raw, want := range map[string]float64{
		`19.99`:   19.99,
		`"19.99"`: 19.99,
		`" 42 "`:  42,
		`0`:       0,
		`1e2`:     100,
	} {
		got, err := ParsePrice(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.InDelta(t, want, got, 1e-9, raw)
	}

	for _, raw := range []string{``, `null`, `"abc"`, `true`, `{}`, `"NaN"`} {
		_, err := ParsePrice(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrInvalidPrice, raw)
	}
}

func TestStripeProcessorWithoutKey(t *testing.T) {
	_, err := NewStripeProcessor("").CreateIntent(context.Background(), 1999, "usd")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
