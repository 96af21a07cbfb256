package pricing_test

import (
	"testing"

	"github.com/ogulcanaydogan/token-ledger/pkg/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	table := pricing.Default()

	tests := []struct {
		class   string
		inRate  float64
		outRate float64
	}{
		{"opus-4.5", 15.00, 75.00},
		{"sonnet-4.5", 3.00, 15.00},
		{"sonnet-3.5", 3.00, 15.00},
		{"haiku-3.5", 0.80, 4.00},
		{"grok", 0, 0},
		{"gemini", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			e, ok := table.Lookup(tt.class)
			require.True(t, ok)
			assert.Equal(t, tt.inRate, e.InRate)
			assert.Equal(t, tt.outRate, e.OutRate)
		})
	}

	assert.Equal(t, "sonnet-4.5", table.Fallback())
	assert.Equal(t, float64(1_000_000), table.UnitScale())
	assert.Len(t, table.Classes(), 6)
}

func TestTable_LookupFallback(t *testing.T) {
	table := pricing.Default()

	e, ok := table.Lookup("mystery-model")
	assert.False(t, ok)
	assert.Equal(t, pricing.Entry{InRate: 3.00, OutRate: 15.00}, e)
	assert.False(t, table.Has("mystery-model"))
}

func TestTable_LookupNormalizes(t *testing.T) {
	table := pricing.Default()
	_, ok := table.Lookup("  Opus-4.5 ")
	assert.True(t, ok)
}

func TestNewTable_Errors(t *testing.T) {
	entries := map[string]pricing.Entry{"a": {InRate: 1, OutRate: 2}}

	_, err := pricing.NewTable(entries, "missing", 1_000_000)
	assert.ErrorContains(t, err, "fallback")

	_, err = pricing.NewTable(entries, "a", 0)
	assert.ErrorContains(t, err, "unit scale")

	_, err = pricing.NewTable(map[string]pricing.Entry{"a": {InRate: -1}}, "a", 1)
	assert.ErrorContains(t, err, "negative rate")
}

func TestTable_Classes_Sorted(t *testing.T) {
	table, err := pricing.NewTable(map[string]pricing.Entry{
		"zeta":  {InRate: 1},
		"alpha": {InRate: 2},
	}, "alpha", 1000)
	require.NoError(t, err)

	classes := table.Classes()
	require.Len(t, classes, 2)
	assert.Equal(t, "alpha", classes[0].Name)
	assert.Equal(t, "zeta", classes[1].Name)
}
