package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/storage"
)

func testSnapshot() *storage.Snapshot {
	return &storage.Snapshot{
		Objects: []storage.Row{
			{Kind: storage.KindOrder, SiteID: 1, Key: "1", Payload: json.RawMessage(`{"order_id":1,"status":"pending","total":"10"}`)},
			{Kind: storage.KindOrder, SiteID: 1, Key: "2", Payload: json.RawMessage(`{"order_id":2,"status":"completed"}`)},
			{Kind: storage.KindOrder, SiteID: 2, Key: "1", Payload: json.RawMessage(`{"order_id":1}`)},
		},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	failures := EvaluateAssertions(testSnapshot(), 1, []Assertion{
		{Type: AssertCount, Kind: "order", Count: 2},
		{Type: AssertPresent, Kind: "order", Key: "1", Expect: map[string]any{"status": "pending", "order_id": 1}},
		{Type: AssertAbsent, Kind: "order", Key: "3"},
		{Type: AssertCount, Kind: "product", Count: 0},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	failures := EvaluateAssertions(testSnapshot(), 1, []Assertion{
		{Type: AssertCount, Kind: "order", Count: 3},
		{Type: AssertPresent, Kind: "order", Key: "9"},
		{Type: AssertPresent, Kind: "order", Key: "2", Expect: map[string]any{"status": "pending"}},
		{Type: AssertAbsent, Kind: "order", Key: "1"},
	})
	require.Len(t, failures, 4)
	assert.Contains(t, failures[0], "found 2, want 3")
	assert.Contains(t, failures[1], `key "9" not cached`)
	assert.Contains(t, failures[2], "does not match")
	assert.Contains(t, failures[3], "still cached")
}

func TestMatchJSON(t *testing.T) {
	type rec struct {
		ID    int64    `json:"id"`
		Name  string   `json:"name"`
		Tags  []string `json:"tags"`
		Inner struct {
			On bool `json:"on"`
		} `json:"inner"`
	}
	v := rec{ID: 7, Name: "mug", Tags: []string{"a", "b"}}
	v.Inner.On = true

	tests := []struct {
		name     string
		expected any
		want     bool
	}{
		{"subset of keys", map[string]any{"id": 7}, true},
		{"nested", map[string]any{"inner": map[string]any{"on": true}}, true},
		{"whole slice", map[string]any{"tags": []any{"a", "b"}}, true},
		{"slice length differs", map[string]any{"tags": []any{"a"}}, false},
		{"value differs", map[string]any{"name": "cup"}, false},
		{"missing key", map[string]any{"price": 1}, false},
		{"type differs", map[string]any{"id": "7"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchJSON(v, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchJSON_Scalars(t *testing.T) {
	ok, err := matchJSON(2, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = matchJSON(false, true)
	require.NoError(t, err)
	assert.False(t, ok)
}
