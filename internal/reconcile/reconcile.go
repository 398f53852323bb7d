// Package reconcile compares recorded stock against a physical count.
//
// An actual quantity of zero means the line has not been counted yet, so a
// genuine zero count cannot be told apart from a skipped line. Callers that
// need to record an empty shelf must adjust the system quantity instead.
package reconcile

import (
	"math"
	"strconv"
	"strings"

	"flowerShopCRM/models"
)

// Result is the derived part of an audit line.
type Result struct {
	Difference int
	Status     models.AuditStatus
}

// Classify computes difference = actual - system and the line status.
// The engine accepts any integers, including a negative system quantity.
func Classify(system, actual int) Result {
	diff := actual - system
	switch {
	case actual == 0:
		return Result{Difference: diff, Status: models.AuditStatusPending}
	case diff == 0:
		return Result{Difference: diff, Status: models.AuditStatusMatch}
	case diff > 0:
		return Result{Difference: diff, Status: models.AuditStatusSurplus}
	default:
		return Result{Difference: diff, Status: models.AuditStatusDeficit}
	}
}

// Recompute refreshes the derived fields of an item from its quantities.
func Recompute(it models.AuditItem) models.AuditItem {
	r := Classify(it.SystemQuantity, it.ActualQuantity)
	it.Difference = r.Difference
	it.Status = r.Status
	return it
}

// NewItem builds an uncounted line for a product's recorded stock.
func NewItem(p models.Product) models.AuditItem {
	return Recompute(models.AuditItem{
		ID:             p.ID,
		Name:           p.Name,
		Unit:           p.Unit,
		SystemQuantity: p.Stock,
	})
}

// UpdateCount returns a copy of items in which the line with itemID carries
// the new actual quantity. Other lines are copied as they are. The second
// result is false when no line has that id.
func UpdateCount(items []models.AuditItem, itemID string, actual int) ([]models.AuditItem, bool) {
	out := make([]models.AuditItem, len(items))
	found := false
	for i, it := range items {
		if it.ID == itemID {
			it.ActualQuantity = actual
			it = Recompute(it)
			found = true
		}
		out[i] = it
	}
	return out, found
}

// Stats summarises a session.
type Stats struct {
	Total         int `json:"total"`
	Checked       int `json:"checked"`
	Matches       int `json:"matches"`
	Discrepancies int `json:"discrepancies"`
}

// Pending is the number of lines not yet counted.
func (s Stats) Pending() int {
	return s.Total - s.Checked
}

// SessionStats counts lines by status.
func SessionStats(items []models.AuditItem) Stats {
	st := Stats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case models.AuditStatusPending:
			continue
		case models.AuditStatusMatch:
			st.Matches++
		case models.AuditStatusSurplus, models.AuditStatusDeficit:
			st.Discrepancies++
		}
		st.Checked++
	}
	return st
}

// IsComplete reports whether every line has been counted.
func IsComplete(items []models.AuditItem) bool {
	for _, it := range items {
		if it.Status == models.AuditStatusPending {
			return false
		}
	}
	return true
}

// Committable returns the lines that may be saved as stock corrections.
// Pending lines are left out rather than written as zero.
func Committable(items []models.AuditItem) []models.AuditItem {
	var out []models.AuditItem
	for _, it := range items {
		if it.Status != models.AuditStatusPending {
			out = append(out, it)
		}
	}
	return out
}

// MaxCount is the largest quantity a count can hold.
const MaxCount = math.MaxInt32

// ClampCount bounds a count to [0, MaxCount].
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// SanitizeCount parses user input into a count. Empty, non-numeric and
// negative input all become zero; oversized input is capped at MaxCount.
func SanitizeCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		// Bound before converting: out-of-range float to int is platform dependent.
		if f >= MaxCount {
			return MaxCount
		}
		if f < 0 {
			return 0
		}
		n = int(f)
	}
	return ClampCount(n)
}
