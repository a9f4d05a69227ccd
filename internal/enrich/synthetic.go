package enrich

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"market-alerts/internal/models"
)

var sentimentSources = []string{"Retail Positioning", "News Flow", "Social Media", "Options Flow"}

// SyntheticProvider produces mock context derived from the current time
// bucket. Readings within one bucket are identical.
type SyntheticProvider struct {
	bucket time.Duration
	now    func() time.Time
}

// NewSyntheticProvider creates a provider with hourly buckets.
func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{
		bucket: time.Hour,
		now:    time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (p *SyntheticProvider) SetClock(now func() time.Time) {
	p.now = now
}

// Sentiment returns the synthetic sentiment for the current bucket.
func (p *SyntheticProvider) Sentiment(context.Context) models.Optional[models.SentimentSnapshot] {
	bucket := p.now().UnixNano() / int64(p.bucket)

	sources, score := p.sentimentAt(bucket)
	_, prior := p.sentimentAt(bucket - 1)

	return models.Present(models.SentimentSnapshot{
		OverallScore:     score,
		Trend:            TrendFromScore(score),
		ChangeSincePrior: score - prior,
		Sources:          sources,
	})
}

func (p *SyntheticProvider) sentimentAt(bucket int64) ([]models.SourceSentiment, float64) {
	rng := rand.New(rand.NewSource(bucket))
	sources := make([]models.SourceSentiment, 0, len(sentimentSources))
	total := 0
	for _, name := range sentimentSources {
		s := 15 + rng.Intn(71) // 15..85
		total += s
		sources = append(sources, models.SourceSentiment{Name: name, Score: float64(s)})
	}
	return sources, float64(total / len(sentimentSources))
}

// Positioning returns synthetic COT positioning for symbol.
func (p *SyntheticProvider) Positioning(_ context.Context, symbol string) models.Optional[models.PositioningBias] {
	bucket := p.now().UnixNano() / int64(p.bucket)

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(bucket ^ int64(h.Sum64())))

	commercial := int64(rng.Intn(100001) - 50000)
	speculative := -commercial*4/5 + int64(rng.Intn(10001)-5000)

	return models.Present(models.PositioningBias{
		Symbol:         symbol,
		CommercialNet:  commercial,
		SpeculativeNet: speculative,
		Bias:           BiasFromNet(commercial, 5000),
	})
}
