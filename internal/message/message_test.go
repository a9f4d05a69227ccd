package message

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"market-alerts/internal/models"
)

func sentiment(score float64, trend models.Trend) models.Optional[models.SentimentSnapshot] {
	return models.Present(models.SentimentSnapshot{OverallScore: score, Trend: trend})
}

func positioning(bias models.Trend) models.Optional[models.PositioningBias] {
	return models.Present(models.PositioningBias{Symbol: "EURUSD", Bias: bias})
}

func TestSynthesizeHighCaution(t *testing.T) {
	in := Input{
		Symbol:      "EURUSD",
		Price:       1.25,
		Label:       "Support",
		Sentiment:   sentiment(80, models.TrendBullish),
		Positioning: positioning(models.TrendBearish),
	}
	for i := 0; i < 3; i++ {
		res := Synthesize(in)
		if res.Caution != CautionHigh {
			t.Fatalf("caution = %s, want %s", res.Caution, CautionHigh)
		}
		if !strings.Contains(res.Text, "HIGH CAUTION") {
			t.Errorf("text missing caution tag:\n%s", res.Text)
		}
	}
}

func TestSynthesizeAlignedSignals(t *testing.T) {
	res := Synthesize(Input{
		Symbol:      "EURUSD",
		Price:       1.25,
		Label:       "Support",
		Sentiment:   sentiment(80, models.TrendBullish),
		Positioning: positioning(models.TrendBullish),
	})
	if res.Caution != CautionAligned {
		t.Errorf("caution = %s, want %s", res.Caution, CautionAligned)
	}
}

func TestSynthesizeMissingSentiment(t *testing.T) {
	for _, pos := range []models.Optional[models.PositioningBias]{
		models.Unavailable[models.PositioningBias](),
		positioning(models.TrendBullish),
		positioning(models.TrendBearish),
	} {
		res := Synthesize(Input{
			Symbol:      "EURUSD",
			Price:       1.25,
			Label:       "Support",
			Sentiment:   models.Unavailable[models.SentimentSnapshot](),
			Positioning: pos,
		})
		if res.Caution != CautionBaseline {
			t.Errorf("caution = %s, want baseline", res.Caution)
		}
		if !strings.Contains(res.Text, "sentiment data unavailable") {
			t.Errorf("text missing unavailable note:\n%s", res.Text)
		}
	}
}

func TestSynthesizeText(t *testing.T) {
	res := Synthesize(Input{
		Symbol:      "GBPUSD",
		Price:       1.26,
		Label:       "Key Level",
		Direction:   models.DirectionBelow,
		Sentiment:   sentiment(48.6, models.TrendNeutral),
		Positioning: models.Unavailable[models.PositioningBias](),
	})

	for _, want := range []string{
		"GBPUSD", "1.2600", "Key Level", "Market Context:",
		"Sentiment: 49% neutral", "COT data unavailable", "crossed below",
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("text missing %q:\n%s", want, res.Text)
		}
	}
}

func TestCautionTable(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		trend models.Trend
		bias  models.Trend
		want  string
	}{
		{"euphoric retail vs bearish commercials", 71, models.TrendBullish, models.TrendBearish, CautionHigh},
		{"fearful retail vs bullish commercials", 29, models.TrendBearish, models.TrendBullish, CautionHigh},
		{"boundary 70 is not high", 70, models.TrendBullish, models.TrendBearish, CautionModerate},
		{"boundary 30 is not high", 30, models.TrendBearish, models.TrendBullish, CautionModerate},
		{"bearish alignment", 35, models.TrendBearish, models.TrendBearish, CautionAligned},
		{"neutral agreement is not aligned", 50, models.TrendNeutral, models.TrendNeutral, CautionModerate},
		{"high overrides aligned", 20, models.TrendBullish, models.TrendBullish, CautionHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caution(sentiment(tt.score, tt.trend), positioning(tt.bias)); got != tt.want {
				t.Errorf("Caution = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := map[float64]string{
		1.25:      "1.2500",
		1.26504:   "1.2650",
		2050:      "2050.0000",
		0.6549999: "0.6550",
	}
	for in, want := range tests {
		if got := FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %s, want %s", in, got, want)
		}
	}
}

// Property: identical inputs always render identical output.
func TestProperty_SynthesizeDeterministic(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	trends := []models.Trend{models.TrendBullish, models.TrendBearish, models.TrendNeutral}

	properties.Property("deterministic", prop.ForAll(
		func(price, score float64, ti, bi int) bool {
			in := Input{
				Symbol:      "XAUUSD",
				Price:       price,
				Label:       "Level",
				Sentiment:   sentiment(score, trends[ti]),
				Positioning: positioning(trends[bi]),
			}
			return Synthesize(in) == Synthesize(in)
		},
		gen.Float64Range(0.0001, 100000),
		gen.Float64Range(0, 100),
		gen.IntRange(0, 2),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}
