package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"market-alerts/internal/models"
)

func triggered(id string) models.TriggeredAlert {
	return models.TriggeredAlert{
		ID:        id,
		Symbol:    "EURUSD",
		Label:     "Support",
		Direction: models.DirectionBelow,
		Message:   "EURUSD alert",
		Caution:   "CAUTION",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSinkAppendDeduplicates(t *testing.T) {
	s := NewSink()
	if !s.Append(triggered("a")) {
		t.Fatal("first append should add")
	}
	if s.Append(triggered("a")) {
		t.Error("duplicate append should be rejected")
	}
	if !s.Append(triggered("b")) {
		t.Error("distinct id should be added")
	}

	list := s.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("list = %+v, want [a b] in append order", list)
	}
	if !s.Contains("a") || s.Contains("z") {
		t.Error("Contains mismatch")
	}
}

func TestSinkDismissAndClear(t *testing.T) {
	s := NewSink()
	for _, id := range []string{"a", "b", "c"} {
		s.Append(triggered(id))
	}

	if !s.Dismiss("b") {
		t.Fatal("Dismiss(b) should remove")
	}
	if s.Dismiss("b") {
		t.Error("second Dismiss(b) should be a no-op")
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "c" {
		t.Errorf("after dismiss list = %+v", list)
	}

	if n := s.ClearAll(); n != 2 {
		t.Errorf("ClearAll = %d, want 2", n)
	}
	if s.Len() != 0 {
		t.Errorf("len after clear = %d", s.Len())
	}
	if n := s.ClearAll(); n != 0 {
		t.Errorf("ClearAll on empty = %d", n)
	}

	// Dismissed ids may be appended again
	if !s.Append(triggered("a")) {
		t.Error("append after clear should add")
	}
}

func TestSinkListIsCopy(t *testing.T) {
	s := NewSink()
	s.Append(triggered("a"))
	list := s.List()
	list[0].Message = "mutated"
	if got, _ := s.Get("a"); got.Message == "mutated" {
		t.Error("List must not expose internal storage")
	}
}

func TestSinkConcurrentAppend(t *testing.T) {
	s := NewSink()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Append(triggered(fmt.Sprintf("id-%d", i)))
			}
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("len = %d, want 50 unique records", s.Len())
	}
}

// Property: after any sequence of appends the sink holds each distinct id
// once, and dismissing one id leaves the others untouched.
func TestProperty_SinkUniqueIDs(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("unique ids and precise dismissal", prop.ForAll(
		func(ids []int, victim int) bool {
			s := NewSink()
			distinct := map[string]bool{}
			for _, n := range ids {
				id := fmt.Sprintf("alert-%d", n)
				added := s.Append(triggered(id))
				if added == distinct[id] {
					return false
				}
				distinct[id] = true
			}
			if s.Len() != len(distinct) {
				return false
			}

			target := fmt.Sprintf("alert-%d", victim)
			removed := s.Dismiss(target)
			if removed != distinct[target] {
				return false
			}
			for id := range distinct {
				if id != target && !s.Contains(id) {
					return false
				}
			}
			return !s.Contains(target)
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
