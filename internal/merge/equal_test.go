package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeepEqual(t *testing.T) {
	utc := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nils", nil, nil, true},
		{"nil vs value", nil, "x", false},
		{"strings", "a", "a", true},
		{"strings differ", "a", "b", false},
		{"bools", true, true, true},
		{"int vs float64", 5, float64(5), true},
		{"numbers differ", float64(5), float64(5.5), false},
		{"string vs number", "5", float64(5), false},
		{"same instant different zones", "2026-01-02T10:00:00Z", "2026-01-02T11:00:00+01:00", true},
		{"instants differ", "2026-01-02T10:00:00Z", "2026-01-02T10:00:01Z", false},
		{"time.Time vs rfc3339 string", utc, "2026-01-02T10:00:00Z", true},
		{"timestamp vs plain string", "2026-01-02T10:00:00Z", "not a date", false},
		{"slices equal", []any{"a", float64(1)}, []any{"a", float64(1)}, true},
		{"slices order matters", []any{"a", "b"}, []any{"b", "a"}, false},
		{"slices length differs", []any{"a"}, []any{"a", "b"}, false},
		{"nested maps equal", map[string]any{"x": map[string]any{"y": float64(1)}}, map[string]any{"x": map[string]any{"y": 1}}, true},
		{"nested maps differ", map[string]any{"x": float64(1)}, map[string]any{"x": float64(2)}, false},
		{"map key sets differ", map[string]any{"x": float64(1)}, map[string]any{"x": float64(1), "y": nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deepEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, deepEqual(tt.b, tt.a), "equality must be symmetric")
		})
	}
}
