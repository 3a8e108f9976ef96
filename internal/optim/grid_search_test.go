package optim

import (
	"context"
	"testing"

	"github.com/san-kum/inertia/internal/config"
)

func TestGridSearchShortestRest(t *testing.T) {
	g := NewGridSearch([]string{"time_constant"}, [][]float64{{800, 200, 500}}, 2, nil)

	best, all, err := g.Search(context.Background(), config.GetPreset("flick"), DurationMetric)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(all))
	}
	if best.Params["time_constant"] != 200 {
		t.Errorf("expected time_constant 200 to rest first, got %v", best.Params)
	}
	if all[0].Params["time_constant"] != 800 {
		t.Errorf("candidates should keep grid order, got %v first", all[0].Params)
	}
}

func TestGridSearchCombinationsAndSkips(t *testing.T) {
	g := NewGridSearch(
		[]string{"power", "velocity"},
		[][]float64{{-1, 0.5, 1}, {100, 200}},
		0, nil,
	)

	_, all, err := g.Search(context.Background(), config.GetPreset("flick"), "travel")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 valid points of 6, got %d", len(all))
	}
	for _, c := range all {
		if c.Params["power"] < 0 {
			t.Errorf("invalid point evaluated: %v", c.Params)
		}
	}
}

func TestGridSearchErrors(t *testing.T) {
	ctx := context.Background()
	base := config.GetPreset("flick")

	if _, _, err := NewGridSearch([]string{"power"}, nil, 1, nil).Search(ctx, base, "travel"); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, _, err := NewGridSearch([]string{"power"}, [][]float64{{1}}, 1, nil).Search(ctx, base, "jerk"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if _, _, err := NewGridSearch([]string{"mass"}, [][]float64{{1}}, 1, nil).Search(ctx, base, "travel"); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, _, err := NewGridSearch([]string{"power"}, [][]float64{{-1}}, 1, nil).Search(ctx, base, "travel"); err == nil {
		t.Error("expected error when no point is valid")
	}
}
