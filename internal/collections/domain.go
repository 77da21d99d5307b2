package collections

import (
	"sort"
	"time"
)

// Status labels a collection record.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// ValidStatus reports whether s is a known collection status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// Method is the payment channel a collection came through.
type Method string

const (
	MethodCash   Method = "cash"
	MethodBank   Method = "bank"
	MethodCheck  Method = "check"
	MethodWallet Method = "wallet"
)

// ValidMethod reports whether m is a known payment channel.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBank, MethodCheck, MethodWallet:
		return true
	}
	return false
}

// Collection is one receipt in the ledger.
type Collection struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Collector string    `json:"collector"`
	Customer  string    `json:"customer"`
	InvoiceID string    `json:"invoiceId,omitempty"`
	Amount    float64   `json:"amount"`
	Method    Method    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarises the ledger. Time-window sums count completed
// records only; Total spans every record regardless of status.
type Stats struct {
	Total          float64 `json:"total"`
	Today          float64 `json:"today"`
	ThisWeek       float64 `json:"thisWeek"`
	ThisMonth      float64 `json:"thisMonth"`
	Pending        float64 `json:"pending"`
	CompletedCount int     `json:"completedCount"`
	PendingCount   int     `json:"pendingCount"`
}

// CollectorTotal is one row of the top-collectors board.
type CollectorTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// MethodTotal aggregates completed collections per payment channel.
type MethodTotal struct {
	Method Method  `json:"method"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// ComputeStats derives the summary figures from the full ledger.
func ComputeStats(records []Collection, now time.Time) Stats {
	weekStart := now.AddDate(0, 0, -7)
	monthStart := now.AddDate(0, -1, 0)
	y, m, d := now.Date()

	var stats Stats
	for _, rec := range records {
		stats.Total += rec.Amount
		switch rec.Status {
		case StatusCompleted:
			stats.CompletedCount++
			ry, rm, rd := rec.Date.Date()
			if ry == y && rm == m && rd == d {
				stats.Today += rec.Amount
			}
			if !rec.Date.Before(weekStart) {
				stats.ThisWeek += rec.Amount
			}
			if !rec.Date.Before(monthStart) {
				stats.ThisMonth += rec.Amount
			}
		case StatusPending:
			stats.PendingCount++
			stats.Pending += rec.Amount
		}
	}
	return stats
}

// TopCollectors ranks collectors by completed amount, capped at five.
func TopCollectors(records []Collection) []CollectorTotal {
	byName := make(map[string]*CollectorTotal)
	var order []string
	for _, rec := range records {
		if rec.Status != StatusCompleted {
			continue
		}
		entry, ok := byName[rec.Collector]
		if !ok {
			entry = &CollectorTotal{Name: rec.Collector}
			byName[rec.Collector] = entry
			order = append(order, rec.Collector)
		}
		entry.Amount += rec.Amount
		entry.Count++
	}

	result := make([]CollectorTotal, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Amount > result[j].Amount })
	if len(result) > 5 {
		result = result[:5]
	}
	return result
}

// MethodTotals aggregates completed collections per payment channel.
func MethodTotals(records []Collection) []MethodTotal {
	byMethod := make(map[Method]*MethodTotal)
	for _, rec := range records {
		if rec.Status != StatusCompleted {
			continue
		}
		entry, ok := byMethod[rec.Method]
		if !ok {
			entry = &MethodTotal{Method: rec.Method}
			byMethod[rec.Method] = entry
		}
		entry.Amount += rec.Amount
		entry.Count++
	}

	result := make([]MethodTotal, 0, len(byMethod))
	for _, method := range []Method{MethodCash, MethodBank, MethodCheck, MethodWallet} {
		if entry, ok := byMethod[method]; ok {
			result = append(result, *entry)
		}
	}
	return result
}
