// Package models provides domain models for the alert engine.
package models

import (
	"time"
)

// Direction is the side of the threshold an alert watches.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionAbove || d == DirectionBelow
}

// Crossed reports whether price satisfies the threshold in direction d.
// Both directions are boundary-inclusive.
func (d Direction) Crossed(price, threshold float64) bool {
	switch d {
	case DirectionAbove:
		return price >= threshold
	case DirectionBelow:
		return price <= threshold
	default:
		return false
	}
}

// Trend represents a qualitative market lean.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// PriceSource tells whether a snapshot came from the live feed.
type PriceSource string

const (
	SourceLive      PriceSource = "live"
	SourceSynthetic PriceSource = "synthetic"
)

// Quote is the latest price for one symbol.
type Quote struct {
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
}

// PriceSnapshot maps symbol to its latest quote. A snapshot is replaced
// wholesale on every refresh.
type PriceSnapshot struct {
	Quotes    map[string]Quote `json:"quotes"`
	Source    PriceSource      `json:"source"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Lookup returns the quote for symbol, matched exactly.
func (s PriceSnapshot) Lookup(symbol string) (Quote, bool) {
	q, ok := s.Quotes[symbol]
	return q, ok
}

// IsSynthetic returns true if the snapshot was generated locally.
func (s PriceSnapshot) IsSynthetic() bool {
	return s.Source == SourceSynthetic
}

// SourceSentiment is the sentiment reading of a single source.
type SourceSentiment struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SentimentSnapshot is the aggregate market sentiment.
type SentimentSnapshot struct {
	OverallScore     float64           `json:"overall_score"` // 0-100
	Trend            Trend             `json:"trend"`
	ChangeSincePrior float64           `json:"change_since_prior"`
	Sources          []SourceSentiment `json:"sources,omitempty"`
}

// PositioningBias is COT-derived positioning for a symbol.
type PositioningBias struct {
	Symbol         string `json:"symbol"`
	CommercialNet  int64  `json:"commercial_net"`
	SpeculativeNet int64  `json:"speculative_net"`
	Bias           Trend  `json:"bias"`
}
