// Package notify matches scraped availability against pending subscriptions
// and turns the result into one SMS per recipient.
package notify

import (
	"math"

	"findvax-notifier/internal/models"
)

// UnboundedSlots is what a slot without a reported count adds to a location's
// total. Sums saturate at this value.
const UnboundedSlots = math.MaxInt

// Evaluator decides which locations currently have enough open slots to be
// worth a text.
type Evaluator struct {
	unknownSlotCount int
}

// NewEvaluator returns an Evaluator that counts an unreported slot as
// unknownSlotCount. Zero or less selects UnboundedSlots.
func NewEvaluator(unknownSlotCount int) *Evaluator {
	if unknownSlotCount <= 0 {
		unknownSlotCount = UnboundedSlots
	}
	return &Evaluator{unknownSlotCount: unknownSlotCount}
}

// Evaluate returns the qualifying locations in location order. A location
// qualifies when its summed slots exceed its threshold, or are positive when
// it has none. Each location is reported at most once.
func (e *Evaluator) Evaluate(locations []models.Location, availability []models.AvailabilitySlot) []models.QualifyingLocation {
	byLocation := make(map[string]models.AvailabilitySlot, len(availability))
	for _, a := range availability {
		if a.Location == "" {
			continue
		}
		if _, seen := byLocation[a.Location]; !seen {
			byLocation[a.Location] = a
		}
	}

	var qualifying []models.QualifyingLocation
	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if seen[loc.UUID] {
			continue
		}
		avail, ok := byLocation[loc.UUID]
		if !ok || len(avail.Times) == 0 {
			continue
		}
		if !e.qualifies(e.sum(avail.Times), loc.NotificationThreshold) {
			continue
		}
		seen[loc.UUID] = true
		qualifying = append(qualifying, models.QualifyingLocation{
			UUID: loc.UUID,
			Name: loc.Name,
			URL:  loc.LinkURL,
		})
	}
	return qualifying
}

func (e *Evaluator) sum(times []models.TimeSlot) int {
	total := 0
	for _, t := range times {
		n := e.unknownSlotCount
		if t.Slots != nil {
			n = *t.Slots
		}
		total = saturatingAdd(total, n)
	}
	return total
}

func (e *Evaluator) qualifies(total int, threshold *int) bool {
	if threshold == nil {
		return total > 0
	}
	return total > *threshold
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}
