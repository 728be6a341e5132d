package model

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLimitJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want HistoryLimit
	}{
		{"finite", `25`, 25},
		{"unlimited string", `"unlimited"`, Unlimited},
		{"legacy sentinel", `2147483647`, Unlimited},
		{"zero", `0`, Unlimited},
		{"negative", `-3`, Unlimited},
		{"numeric string", `"10"`, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l HistoryLimit
			require.NoError(t, json.Unmarshal([]byte(tt.in), &l))
			assert.Equal(t, tt.want, l)
		})
	}

	b, err := json.Marshal(Unlimited)
	require.NoError(t, err)
	assert.JSONEq(t, `"unlimited"`, string(b))

	b, err = json.Marshal(Limit(3))
	require.NoError(t, err)
	assert.JSONEq(t, `3`, string(b))
}

func TestParseHistoryLimit(t *testing.T) {
	l, err := ParseHistoryLimit("Unlimited")
	require.NoError(t, err)
	assert.False(t, l.Finite())

	l, err = ParseHistoryLimit("50")
	require.NoError(t, err)
	assert.Equal(t, HistoryLimit(50), l)

	_, err = ParseHistoryLimit("0")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseHistoryLimit("lots")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAppConfigDecodeKeepsDefaults(t *testing.T) {
	var c AppConfig
	require.NoError(t, json.Unmarshal([]byte(`{"maxHistoryItems": 5, "theme": "dark"}`), &c))
	assert.Equal(t, ActivationBoth, c.ActivationMode)
	assert.Equal(t, HistoryLimit(5), c.MaxHistoryItems)
	assert.True(t, c.EnableQuickSearch)
}

func TestAppConfigValidateAndNormalize(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())

	c.ActivationMode = "HOVER"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
	assert.Equal(t, ActivationBoth, c.Normalize().ActivationMode)
}

func TestParseActivationMode(t *testing.T) {
	for in, want := range map[string]ActivationMode{
		"keyboard-shortcut": ActivationShortcut,
		"icon":              ActivationIcon,
		"BOTH":              ActivationBoth,
	} {
		got, err := ParseActivationMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseActivationMode("mouse")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEntryOrdering(t *testing.T) {
	entries := []Entry{
		{ID: "a", Timestamp: 1},
		{ID: "b", Timestamp: 3, Pinned: true},
		{ID: "c", Timestamp: 5},
		{ID: "d", Timestamp: 2, Pinned: true},
	}
	slices.SortStableFunc(entries, Compare)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
}

func TestEntryJSONFieldNames(t *testing.T) {
	in := `{"id":"x","content":"hello","timestamp":1700000000000,"isPinned":true,"type":"TEXT","extra":1}`
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(in), &e))
	assert.Equal(t, Entry{ID: "x", Content: "hello", Timestamp: 1700000000000, Pinned: true, Type: TypeText}, e)
}

func TestEntryPreview(t *testing.T) {
	e := Entry{Content: "line one\n\tline two"}
	assert.Equal(t, "line one line two", e.Preview(80))
	assert.Equal(t, "line…", e.Preview(4))
}
