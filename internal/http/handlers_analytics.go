package http

import (
	"net/http"

	"cardtrack/internal/core"
	"cardtrack/internal/services"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, ownerID int64) {
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svcs.Analytics.Analytics(r.Context(), ownerID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyticsTrend(w http.ResponseWriter, r *http.Request, ownerID int64) {
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	points, err := s.svcs.Analytics.Trend(r.Context(), ownerID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if points == nil {
		points = []core.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func parseAnalyticsQuery(r *http.Request) (services.AnalyticsQuery, error) {
	var q services.AnalyticsQuery
	var err error

	switch period := r.URL.Query().Get("period"); period {
	case "", string(core.PeriodMonth):
		q.Period = core.PeriodMonth
	case string(core.PeriodQuarter):
		q.Period = core.PeriodQuarter
	case string(core.PeriodYear):
		q.Period = core.PeriodYear
	default:
		return q, &core.ValidationError{Field: "period", Message: "period must be month, quarter or year"}
	}

	if q.Month, err = queryInt(r, "month", 0); err != nil {
		return q, err
	}
	if q.Month != 0 && (q.Month < 1 || q.Month > 12) {
		return q, &core.ValidationError{Field: "month", Message: "month must be between 1 and 12"}
	}
	if q.Year, err = queryInt(r, "year", 0); err != nil {
		return q, err
	}
	if q.IsDollar, err = queryBoolPtr(r, "is_dollar"); err != nil {
		return q, err
	}

	return q, nil
}
