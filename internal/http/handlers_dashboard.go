package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"trackmyfin/internal/core"
	"trackmyfin/internal/log"
)

type statsPayload struct {
	TotalBalance    float64 `json:"totalBalance"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	MonthlyExpenses float64 `json:"monthlyExpenses"`
	SavingsRate     float64 `json:"savingsRate"`
}

type monthPointPayload struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type categorySharePayload struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type expensesChartPayload struct {
	MonthlyData  []monthPointPayload    `json:"monthlyData"`
	CategoryData []categorySharePayload `json:"categoryData"`
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)

	txs, err := s.storage.ListTransactions(ctx, uid)
	if err != nil {
		s.reportDataError(w, r, err, "load transactions")
		return
	}
	sals, err := s.storage.ListSalaries(ctx, uid)
	if err != nil {
		s.reportDataError(w, r, err, "load salaries")
		return
	}

	stats, err := s.engine.Stats(txs, sals)
	if err != nil {
		s.reportDataError(w, r, err, "compute stats")
		return
	}

	writeJSON(w, http.StatusOK, statsPayload{
		TotalBalance:    stats.TotalBalance.InexactFloat64(),
		MonthlyIncome:   stats.MonthlyIncome.InexactFloat64(),
		MonthlyExpenses: stats.MonthlyExpenses.InexactFloat64(),
		SavingsRate:     stats.SavingsRate.InexactFloat64(),
	})
}

func (s *Server) handleExpensesChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)
	rangeToken := r.URL.Query().Get("range")

	txs, err := s.storage.ListTransactions(ctx, uid)
	if err != nil {
		s.reportDataError(w, r, err, "load transactions")
		return
	}

	chart, err := s.engine.ExpenseChart(txs, rangeToken)
	if err != nil {
		s.reportDataError(w, r, err, "compute chart")
		return
	}

	payload := expensesChartPayload{
		MonthlyData:  make([]monthPointPayload, 0, len(chart.MonthlyData)),
		CategoryData: make([]categorySharePayload, 0, len(chart.CategoryData)),
	}
	for _, p := range chart.MonthlyData {
		payload.MonthlyData = append(payload.MonthlyData, monthPointPayload{
			Month:  p.Month,
			Amount: p.Amount.InexactFloat64(),
		})
	}
	for _, c := range chart.CategoryData {
		payload.CategoryData = append(payload.CategoryData, categorySharePayload{
			Name:       c.Name,
			Amount:     c.Amount.InexactFloat64(),
			Percentage: c.Percentage.InexactFloat64(),
		})
	}

	s.logger.DebugContext(ctx, "Expenses chart computed",
		log.FieldUserID, uid,
		log.FieldRange, rangeToken,
		"months", len(payload.MonthlyData),
		"categories", len(payload.CategoryData))

	writeJSON(w, http.StatusOK, payload)
}

// reportDataError distinguishes corrupt stored records from plain
// failures so operators see which record to fix.
func (s *Server) reportDataError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var invalid *core.InvalidRecordError
	if errors.As(err, &invalid) {
		s.logger.ErrorContext(r.Context(), "Data integrity fault",
			log.FieldEntity, invalid.Entity,
			log.FieldRecordID, invalid.ID,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "data integrity fault: "+invalid.Error())
		return
	}
	s.logger.ErrorContext(r.Context(), "Dashboard data error",
		"operation", op,
		log.FieldError, err)
	writeError(w, http.StatusInternalServerError, "failed to "+op)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	entries, err := s.storage.ListAudit(r.Context(), userID(r), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List audit failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	type auditPayload struct {
		ID         int64  `json:"id"`
		Entity     string `json:"entity"`
		Action     string `json:"action"`
		RecordID   int64  `json:"recordId"`
		OccurredAt string `json:"occurredAt"`
	}
	payload := make([]auditPayload, 0, len(entries))
	for _, e := range entries {
		payload = append(payload, auditPayload{
			ID:         e.ID,
			Entity:     e.Entity,
			Action:     e.Action,
			RecordID:   e.RecordID,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, payload)
}
