package core

import "math"

// CategorySummary is one row of the per-category breakdown, sorted by total
// descending when returned by the analytics engine.
type CategorySummary struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"category_name"`
	Icon       string  `json:"category_icon"`
	Color      string  `json:"category_color"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TrendPoint is one day of spend in the trend series. Days with no spend
// are omitted, not zero-filled.
type TrendPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Analytics is the aggregate read model for one period/currency query.
type Analytics struct {
	TotalSpending      float64           `json:"total_spending"`
	TotalARS           float64           `json:"total_ars"`
	TotalUSD           float64           `json:"total_usd"`
	TotalUnified       float64           `json:"total_unified"`
	DolarRate          float64           `json:"dolar_rate"`
	TransactionCount   int               `json:"transaction_count"`
	AverageTransaction float64           `json:"average_transaction"`
	CategoryBreakdown  []CategorySummary `json:"category_breakdown"`
	Recommendations    []Recommendation  `json:"recommendations"`
	Period             string            `json:"period"`
}

// MonthYear identifies one statement period for filter choices.
type MonthYear struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// AvailablePeriods lists the periods an owner can filter by.
type AvailablePeriods struct {
	Months []MonthYear `json:"months"`
	Years  []int       `json:"years"`
}

// LatestDates carries the closing/due dates of the most recent statement.
type LatestDates struct {
	ClosingDate Date `json:"proximo_cierre"`
	DueDate     Date `json:"proximo_vencimiento"`
	Month       int  `json:"month"`
	Year        int  `json:"year"`
}

// Round2 rounds to two decimals for API figures derived from cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal, used for percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
