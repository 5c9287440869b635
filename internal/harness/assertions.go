package harness

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/roach88/storesync/internal/storage"
)

// EvaluateAssertions checks assertions against a snapshot of site and
// returns one message per failed assertion.
func EvaluateAssertions(snap *storage.Snapshot, site int64, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(snap, site, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %s %s: %v", i, a.Type, a.Kind, err))
		}
	}
	return failures
}

func evaluate(snap *storage.Snapshot, site int64, a Assertion) error {
	kind := storage.Kind(a.Kind)

	switch a.Type {
	case AssertCount:
		n := 0
		for _, r := range snap.Objects {
			if r.Kind == kind && r.SiteID == site {
				n++
			}
		}
		if n != a.Count {
			return fmt.Errorf("found %d, want %d", n, a.Count)
		}
		return nil

	case AssertPresent:
		row, ok := findRow(snap, kind, site, a.Key)
		if !ok {
			return fmt.Errorf("key %q not cached", a.Key)
		}
		if len(a.Expect) == 0 {
			return nil
		}
		var payload any
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		ok, err := matchJSON(payload, a.Expect)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q: payload %s does not match %v", a.Key, row.Payload, a.Expect)
		}
		return nil

	case AssertAbsent:
		if _, ok := findRow(snap, kind, site, a.Key); ok {
			return fmt.Errorf("key %q still cached", a.Key)
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func findRow(snap *storage.Snapshot, kind storage.Kind, site int64, key string) (storage.Row, bool) {
	for _, r := range snap.Objects {
		if r.Kind == kind && r.SiteID == site && r.Key == key {
			return r, true
		}
	}
	return storage.Row{}, false
}

// matchJSON reports whether expected is a subset of actual once both are
// reduced to their generic JSON form. Maps match when every expected key
// matches; slices must have equal length and match element-wise.
func matchJSON(actual, expected any) (bool, error) {
	a, err := generic(actual)
	if err != nil {
		return false, err
	}
	e, err := generic(expected)
	if err != nil {
		return false, err
	}
	return subset(a, e), nil
}

func generic(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

func subset(actual, expected any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, ok := a[k]
			if !ok || !subset(av, ev) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if !subset(a[i], e[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(actual, expected)
	}
}
