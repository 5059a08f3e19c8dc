package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"cardtrack/internal/core"
)

// AnalyticsService computes the aggregate spending views. All figures are
// derived per request from persisted transactions; nothing is cached.
type AnalyticsService struct {
	statements   StatementStore
	transactions TransactionStore
}

func NewAnalyticsService(statements StatementStore, transactions TransactionStore) *AnalyticsService {
	return &AnalyticsService{statements: statements, transactions: transactions}
}

// AnalyticsQuery selects the period and currency scope of one analytics
// read. Month/Year pin the period explicitly; zero values resolve to the
// owner's most recent statement.
type AnalyticsQuery struct {
	Period   core.Period
	IsDollar *bool
	Month    int
	Year     int
}

// scope is a resolved analytics window: either a set of statement periods
// or a whole statement year.
type scope struct {
	periods []core.MonthYear
	year    int
	label   string
	empty   bool
}

// Analytics computes the aggregate object for one period/currency query.
//
// When the currency filter is unset, totalSpending, the breakdown and the
// average cover ARS transactions only, keeping sum(breakdown) equal to
// totalSpending; totalArs/totalUsd/totalUnified/transactionCount cover
// both currencies.
func (s *AnalyticsService) Analytics(ctx context.Context, ownerID int64, q AnalyticsQuery) (*core.Analytics, error) {
	sc, err := s.resolveScope(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	result := &core.Analytics{
		CategoryBreakdown: []core.CategorySummary{},
		Recommendations:   []core.Recommendation{},
		Period:            sc.label,
	}
	if sc.empty {
		return result, nil
	}

	txns, err := s.transactions.ListTransactionsForPeriods(ctx, ownerID, sc.periods, sc.year, q.IsDollar)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	var totalARS, totalUSD core.Money
	for _, t := range txns {
		if t.IsDollar {
			totalUSD = totalUSD.Add(t.Amount)
		} else {
			totalARS = totalARS.Add(t.Amount)
		}
	}

	scoped := spendingScope(txns, q.IsDollar)
	var totalSpending core.Money
	for _, t := range scoped {
		totalSpending = totalSpending.Add(t.Amount)
	}

	rate := latestRate(txns)
	unified := totalARS.Float64()
	if rate > 0 {
		unified += totalUSD.Float64() * rate
	}

	result.TotalSpending = totalSpending.Float64()
	result.TotalARS = totalARS.Float64()
	result.TotalUSD = totalUSD.Float64()
	result.TotalUnified = core.Round2(unified)
	result.DolarRate = rate
	result.TransactionCount = len(txns)
	if len(scoped) > 0 {
		result.AverageTransaction = core.Round2(totalSpending.Float64() / float64(len(scoped)))
	}
	result.CategoryBreakdown = buildBreakdown(scoped, totalSpending)

	prior, err := s.priorSpending(ctx, ownerID, q, sc)
	if err != nil {
		return nil, err
	}
	result.Recommendations = recommendations(txns, scoped, result.CategoryBreakdown, totalSpending.Float64(), prior, q.IsDollar)

	return result, nil
}

// Trend returns the sparse daily spend series for the resolved period,
// ascending by date. Days without spend are omitted.
func (s *AnalyticsService) Trend(ctx context.Context, ownerID int64, q AnalyticsQuery) ([]core.TrendPoint, error) {
	sc, err := s.resolveScope(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	if sc.empty {
		return []core.TrendPoint{}, nil
	}

	txns, err := s.transactions.ListTransactionsForPeriods(ctx, ownerID, sc.periods, sc.year, q.IsDollar)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	byDay := make(map[string]core.Money)
	for _, t := range spendingScope(txns, q.IsDollar) {
		key := t.Date.String()
		byDay[key] = byDay[key].Add(t.Amount)
	}

	points := make([]core.TrendPoint, 0, len(byDay))
	for day, total := range byDay {
		points = append(points, core.TrendPoint{Date: day, Total: total.Float64()})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// resolveScope turns the query into concrete statement periods. A query
// against an owner with no statements resolves to an empty scope.
func (s *AnalyticsService) resolveScope(ctx context.Context, ownerID int64, q AnalyticsQuery) (scope, error) {
	anchor := core.MonthYear{Month: q.Month, Year: q.Year}
	if anchor.Month == 0 || anchor.Year == 0 {
		latest, err := s.statements.LatestStatement(ctx, ownerID)
		if errors.Is(err, core.ErrNotFound) {
			return scope{label: string(q.Period), empty: true}, nil
		}
		if err != nil {
			return scope{}, fmt.Errorf("latest statement: %w", err)
		}
		anchor = core.MonthYear{Month: latest.Month, Year: latest.Year}
	}

	switch q.Period {
	case core.PeriodYear:
		year := q.Year
		if year == 0 {
			year = anchor.Year
		}
		return scope{year: year, label: strconv.Itoa(year)}, nil
	case core.PeriodQuarter:
		months := trailingMonths(anchor, 3)
		return scope{
			periods: months,
			label: fmt.Sprintf("%d/%d-%d/%d",
				months[0].Month, months[0].Year, anchor.Month, anchor.Year),
		}, nil
	default: // month
		return scope{
			periods: []core.MonthYear{anchor},
			label:   fmt.Sprintf("%d/%d", anchor.Month, anchor.Year),
		}, nil
	}
}

// priorSpending computes the comparable previous-period total in the same
// currency scope, for trend recommendations.
func (s *AnalyticsService) priorSpending(ctx context.Context, ownerID int64, q AnalyticsQuery, sc scope) (float64, error) {
	var periods []core.MonthYear
	var year int

	switch {
	case sc.year != 0:
		year = sc.year - 1
	case len(sc.periods) > 0:
		n := len(sc.periods)
		periods = trailingMonths(prevMonth(sc.periods[0]), n)
	default:
		return 0, nil
	}

	txns, err := s.transactions.ListTransactionsForPeriods(ctx, ownerID, periods, year, q.IsDollar)
	if err != nil {
		return 0, fmt.Errorf("load prior transactions: %w", err)
	}

	var total core.Money
	for _, t := range spendingScope(txns, q.IsDollar) {
		total = total.Add(t.Amount)
	}
	return total.Float64(), nil
}

// spendingScope narrows a transaction set to the currency the spending
// figures are computed over: the filtered currency when set, ARS otherwise.
func spendingScope(txns []core.Transaction, isDollar *bool) []core.Transaction {
	if isDollar != nil {
		return txns
	}
	scoped := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.IsDollar {
			scoped = append(scoped, t)
		}
	}
	return scoped
}

// latestRate picks the dolar rate of the most recent statement present in
// the transaction set.
func latestRate(txns []core.Transaction) float64 {
	var best *core.Statement
	for _, t := range txns {
		if t.Statement == nil {
			continue
		}
		if best == nil || laterPeriod(
			core.MonthYear{Month: t.Statement.Month, Year: t.Statement.Year},
			core.MonthYear{Month: best.Month, Year: best.Year},
		) {
			best = t.Statement
		}
	}
	if best == nil {
		return 0
	}
	return best.DolarRate
}

func buildBreakdown(txns []core.Transaction, totalSpending core.Money) []core.CategorySummary {
	type bucket struct {
		summary core.CategorySummary
		total   core.Money
	}
	buckets := make(map[int64]*bucket)

	for _, t := range txns {
		var id int64
		name, icon, color := "Sin categoría", "📦", "#778899"
		if t.Category != nil {
			id = t.Category.ID
			name, icon, color = t.Category.Name, t.Category.Icon, t.Category.Color
		}
		b, ok := buckets[id]
		if !ok {
			b = &bucket{summary: core.CategorySummary{CategoryID: id, Name: name, Icon: icon, Color: color}}
			buckets[id] = b
		}
		b.total = b.total.Add(t.Amount)
		b.summary.Count++
	}

	breakdown := make([]core.CategorySummary, 0, len(buckets))
	for _, b := range buckets {
		b.summary.Total = b.total.Float64()
		if totalSpending.Cents > 0 {
			b.summary.Percentage = core.Round1(b.total.Float64() / totalSpending.Float64() * 100)
		}
		breakdown = append(breakdown, b.summary)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

// recommendations applies the heuristic rules in order. Multiple rules may
// fire; the list is empty exactly when the scope has no transactions.
func recommendations(all, scoped []core.Transaction, breakdown []core.CategorySummary, totalSpending, priorSpending float64, isDollar *bool) []core.Recommendation {
	recs := []core.Recommendation{}
	if len(all) == 0 {
		return recs
	}

	currency := "ARS"
	if isDollar != nil && *isDollar {
		currency = "USD"
	}

	if len(breakdown) > 0 && breakdown[0].Percentage > 40 {
		recs = append(recs, core.Recommendation{
			Type: "warning",
			Icon: "⚠️",
			Message: fmt.Sprintf("Tu categoría top '%s' representa el %.0f%% de tus gastos.",
				breakdown[0].Name, breakdown[0].Percentage),
		})
	}

	if priorSpending > 0 && totalSpending > priorSpending*1.2 {
		change := (totalSpending - priorSpending) / priorSpending * 100
		recs = append(recs, core.Recommendation{
			Type:    "warning",
			Icon:    "📈",
			Message: fmt.Sprintf("¡Ojo! Gastaste %.0f%% más que el período anterior en %s.", change, currency),
		})
	}

	if p := uncategorizedShare(scoped, totalSpending); p > 15 {
		recs = append(recs, core.Recommendation{
			Type:    "tip",
			Icon:    "🏷️",
			Message: fmt.Sprintf("El %.0f%% de tus gastos está sin categorizar. Asignales una categoría para ver mejor en qué gastás.", p),
		})
	}

	if priorSpending > 0 && totalSpending < priorSpending {
		change := (priorSpending - totalSpending) / priorSpending * 100
		recs = append(recs, core.Recommendation{
			Type:    "success",
			Icon:    "🎉",
			Message: fmt.Sprintf("¡Muy bien! Redujiste tus gastos un %.0f%% en %s.", change, currency),
		})
	}

	if len(recs) == 0 {
		if len(breakdown) > 0 {
			recs = append(recs, core.Recommendation{
				Type: "info",
				Icon: "📍",
				Message: fmt.Sprintf("La mayor parte de tus gastos (%.0f%%) va a '%s'.",
					breakdown[0].Percentage, breakdown[0].Name),
			})
		} else {
			recs = append(recs, core.Recommendation{
				Type:    "info",
				Icon:    "📊",
				Message: fmt.Sprintf("Tenés %d transacciones en %s en este período.", len(all), currency),
			})
		}
	}

	return recs
}

// uncategorizedShare is the percentage of scoped spend sitting in the
// default fallback bucket or carrying no category at all.
func uncategorizedShare(scoped []core.Transaction, totalSpending float64) float64 {
	if totalSpending <= 0 {
		return 0
	}
	var total core.Money
	for _, t := range scoped {
		if t.Category == nil || t.Category.IsDefault {
			total = total.Add(t.Amount)
		}
	}
	return total.Float64() / totalSpending * 100
}

// trailingMonths returns the n calendar months ending at anchor, oldest
// first.
func trailingMonths(anchor core.MonthYear, n int) []core.MonthYear {
	months := make([]core.MonthYear, n)
	current := anchor
	for i := n - 1; i >= 0; i-- {
		months[i] = current
		current = prevMonth(current)
	}
	return months
}

func prevMonth(my core.MonthYear) core.MonthYear {
	if my.Month == 1 {
		return core.MonthYear{Month: 12, Year: my.Year - 1}
	}
	return core.MonthYear{Month: my.Month - 1, Year: my.Year}
}
