// Package message renders triggered-alert notification text.
package message

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"market-alerts/internal/models"
)

// Caution levels, from least to most informed.
const (
	CautionBaseline = "CAUTION"
	CautionHigh     = "HIGH CAUTION"
	CautionAligned  = "ALIGNED SIGNALS"
	CautionModerate = "MODERATE CAUTION"
)

var advisories = map[string]string{
	CautionBaseline: "incomplete market context; trade with reduced size",
	CautionHigh:     "retail sentiment conflicts with smart money; wait for confirmation",
	CautionAligned:  "good setup if it matches your plan",
	CautionModerate: "mixed signals; follow your risk management",
}

// Input is everything needed to describe a fired alert.
type Input struct {
	Symbol      string
	Price       float64
	Label       string
	Direction   models.Direction
	Sentiment   models.Optional[models.SentimentSnapshot]
	Positioning models.Optional[models.PositioningBias]
}

// Result is the rendered notification.
type Result struct {
	Text    string
	Caution string
}

// Advisory returns the fixed advice sentence for a caution level.
func Advisory(caution string) string {
	return advisories[caution]
}

// Caution evaluates the caution table. Missing context always yields the
// baseline level.
func Caution(sentiment models.Optional[models.SentimentSnapshot], positioning models.Optional[models.PositioningBias]) string {
	s, okS := sentiment.Get()
	p, okP := positioning.Get()
	if !okS || !okP {
		return CautionBaseline
	}

	if (s.OverallScore > 70 && p.Bias == models.TrendBearish) ||
		(s.OverallScore < 30 && p.Bias == models.TrendBullish) {
		return CautionHigh
	}
	if s.Trend == p.Bias && (p.Bias == models.TrendBullish || p.Bias == models.TrendBearish) {
		return CautionAligned
	}
	return CautionModerate
}

// Synthesize builds the notification text. Output depends only on in.
func Synthesize(in Input) Result {
	caution := Caution(in.Sentiment, in.Positioning)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s alert: %s at %s", in.Symbol, in.Label, FormatPrice(in.Price))
	if in.Direction.Valid() {
		fmt.Fprintf(&sb, " (crossed %s)", in.Direction)
	}
	sb.WriteString("\n\nMarket Context:\n")

	if s, ok := in.Sentiment.Get(); ok {
		fmt.Fprintf(&sb, "- Sentiment: %.0f%% %s\n", s.OverallScore, s.Trend)
	} else {
		sb.WriteString("- Sentiment: sentiment data unavailable\n")
	}
	if p, ok := in.Positioning.Get(); ok {
		fmt.Fprintf(&sb, "- COT: commercials %s\n", p.Bias)
	} else {
		sb.WriteString("- COT: COT data unavailable\n")
	}

	fmt.Fprintf(&sb, "\n%s: %s", caution, Advisory(caution))

	return Result{Text: sb.String(), Caution: caution}
}

// FormatPrice renders a price with four decimals.
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(4)
}
