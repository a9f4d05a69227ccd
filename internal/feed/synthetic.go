package feed

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"market-alerts/internal/models"
)

// Instrument is one symbol of the watched universe.
type Instrument struct {
	Symbol     string
	FeedSymbol string
	BasePrice  float64
}

// wave is one sinusoidal component of the synthetic price path.
type wave struct {
	amplitude float64       // fraction of base price
	period    time.Duration // full cycle
	harmonic  float64       // phase multiplier
}

var syntheticWaves = []wave{
	{amplitude: 0.0040, period: time.Hour, harmonic: 1},
	{amplitude: 0.0015, period: 10 * time.Minute, harmonic: 2},
	{amplitude: 0.0005, period: 97 * time.Second, harmonic: 3},
}

// Synthetic generates deterministic prices from (symbol, wall-clock time).
// Nearby instants produce nearby prices, so repeated polls drift smoothly.
type Synthetic struct {
	instruments []Instrument
	now         func() time.Time
}

// NewSynthetic creates a generator for the given universe.
func NewSynthetic(instruments []Instrument) *Synthetic {
	return &Synthetic{
		instruments: instruments,
		now:         time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (g *Synthetic) SetClock(now func() time.Time) {
	g.now = now
}

// Snapshot returns synthetic quotes for every instrument at the current time.
func (g *Synthetic) Snapshot() models.PriceSnapshot {
	return g.SnapshotAt(g.now())
}

// SnapshotAt returns synthetic quotes for every instrument at t.
func (g *Synthetic) SnapshotAt(t time.Time) models.PriceSnapshot {
	quotes := make(map[string]models.Quote, len(g.instruments))
	for _, inst := range g.instruments {
		quotes[inst.Symbol] = SyntheticQuote(inst.Symbol, inst.BasePrice, t)
	}
	return models.PriceSnapshot{
		Quotes:    quotes,
		Source:    models.SourceSynthetic,
		FetchedAt: t,
	}
}

// SyntheticQuote computes the synthetic quote of one symbol at t. The base
// price stands in for the previous close.
func SyntheticQuote(symbol string, base float64, t time.Time) models.Quote {
	phase := symbolPhase(symbol)
	seconds := float64(t.UnixNano()) / float64(time.Second)

	offset := 0.0
	for _, w := range syntheticWaves {
		angle := 2*math.Pi*seconds/w.period.Seconds() + w.harmonic*phase
		offset += w.amplitude * math.Sin(angle)
	}

	price := base * (1 + offset)
	return models.Quote{
		Price:         roundPrice(price),
		PercentChange: round(offset*100, 2),
	}
}

// symbolPhase maps a symbol to a stable phase in [0, 2π).
func symbolPhase(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return float64(h.Sum32()) / float64(math.MaxUint32) * 2 * math.Pi
}

// roundPrice keeps five decimals for FX-sized prices and two otherwise.
func roundPrice(p float64) float64 {
	if p < 10 {
		return round(p, 5)
	}
	return round(p, 2)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
