package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: "above" fires iff price >= threshold and "below" fires iff
// price <= threshold, including the boundary.
func TestProperty_DirectionCrossedIsBoundaryInclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	priceGen := gen.Float64Range(0.5, 50000.0)

	properties.Property("above fires iff price >= threshold", prop.ForAll(
		func(price, threshold float64) bool {
			return DirectionAbove.Crossed(price, threshold) == (price >= threshold)
		},
		priceGen,
		priceGen,
	))

	properties.Property("below fires iff price <= threshold", prop.ForAll(
		func(price, threshold float64) bool {
			return DirectionBelow.Crossed(price, threshold) == (price <= threshold)
		},
		priceGen,
		priceGen,
	))

	properties.Property("both directions fire at the threshold itself", prop.ForAll(
		func(threshold float64) bool {
			return DirectionAbove.Crossed(threshold, threshold) && DirectionBelow.Crossed(threshold, threshold)
		},
		priceGen,
	))

	properties.TestingRun(t)
}

func TestDirectionValid(t *testing.T) {
	tests := []struct {
		dir  Direction
		want bool
	}{
		{DirectionAbove, true},
		{DirectionBelow, true},
		{"Above", false},
		{"", false},
		{"cross_above", false},
	}
	for _, tt := range tests {
		if got := tt.dir.Valid(); got != tt.want {
			t.Errorf("Direction(%q).Valid() = %v, want %v", tt.dir, got, tt.want)
		}
	}
	if Direction("sideways").Crossed(10, 10) {
		t.Error("unknown direction must never fire")
	}
}

func TestOptionalJSON(t *testing.T) {
	ctx := AlertContext{
		Price:       1.26,
		Sentiment:   Present(SentimentSnapshot{OverallScore: 80, Trend: TrendBullish}),
		Positioning: Unavailable[PositioningBias](),
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AlertContext
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	s, ok := decoded.Sentiment.Get()
	if !ok || s.OverallScore != 80 || s.Trend != TrendBullish {
		t.Errorf("sentiment = %+v (present=%v), want score 80 bullish", s, ok)
	}
	if decoded.Positioning.IsPresent() {
		t.Error("positioning should decode as unavailable")
	}
}
