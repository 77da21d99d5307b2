package reports

import "math"

// MonthlySales is one bar of the monthly sales chart.
type MonthlySales struct {
	Month     string  `json:"month"`
	Sales     float64 `json:"sales"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
}

// CategorySales is the raw revenue per product category.
type CategorySales struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

// CategoryShare adds the percentage slice to a category.
type CategoryShare struct {
	Name  string  `json:"name"`
	Value int     `json:"value"`
	Sales float64 `json:"sales"`
}

// MethodAmount is the raw collected amount per payment channel.
type MethodAmount struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// MethodShare adds the percentage slice to a payment channel.
type MethodShare struct {
	Method     string  `json:"method"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// SegmentRaw is the raw count and revenue of a customer segment.
type SegmentRaw struct {
	Segment string  `json:"segment"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// CustomerSegment adds the average order value to a segment.
type CustomerSegment struct {
	Segment  string  `json:"segment"`
	Count    int     `json:"count"`
	Revenue  float64 `json:"revenue"`
	AvgOrder float64 `json:"avgOrder"`
}

// DailySales is one point of the daily sales line.
type DailySales struct {
	Date   string  `json:"date"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// Summary bundles every report dataset for one date range.
type Summary struct {
	From             string            `json:"from"`
	To               string            `json:"to"`
	MonthlySales     []MonthlySales    `json:"monthlySales"`
	CategoryShares   []CategoryShare   `json:"categoryShares"`
	PaymentMethods   []MethodShare     `json:"paymentMethods"`
	CustomerSegments []CustomerSegment `json:"customerSegments"`
	DailySales       []DailySales      `json:"dailySales"`
}

// CategoryShares converts raw category revenue into percentage slices.
func CategoryShares(raw []CategorySales) []CategoryShare {
	var total float64
	for _, c := range raw {
		total += c.Sales
	}
	result := make([]CategoryShare, 0, len(raw))
	for _, c := range raw {
		share := CategoryShare{Name: c.Name, Sales: c.Sales}
		if total > 0 {
			share.Value = int(math.Round(c.Sales / total * 100))
		}
		result = append(result, share)
	}
	return result
}

// MethodShares converts raw per-channel amounts into percentage slices.
func MethodShares(raw []MethodAmount) []MethodShare {
	var total float64
	for _, m := range raw {
		total += m.Amount
	}
	result := make([]MethodShare, 0, len(raw))
	for _, m := range raw {
		share := MethodShare{Method: m.Method, Amount: m.Amount}
		if total > 0 {
			share.Percentage = int(math.Round(m.Amount / total * 100))
		}
		result = append(result, share)
	}
	return result
}

// SegmentAverages derives the average order value per segment.
func SegmentAverages(raw []SegmentRaw) []CustomerSegment {
	result := make([]CustomerSegment, 0, len(raw))
	for _, s := range raw {
		segment := CustomerSegment{Segment: s.Segment, Count: s.Count, Revenue: s.Revenue}
		if s.Count > 0 {
			segment.AvgOrder = math.Round(s.Revenue / float64(s.Count))
		}
		result = append(result, segment)
	}
	return result
}
