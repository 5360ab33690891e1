package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"trackmyfin/internal/core"
	"trackmyfin/internal/log"
	"trackmyfin/internal/storage"
)

type transactionRequest struct {
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
}

type transactionPayload struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date"`
}

type salaryRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type salaryPayload struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

const dateLayout = "2006-01-02"

// parseRecordDate accepts a plain date or a full RFC 3339 timestamp.
func parseRecordDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func toTransactionPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:          t.ID,
		Amount:      t.Amount.InexactFloat64(),
		Kind:        string(t.Kind),
		Description: t.Description,
		Category:    t.Category,
		Date:        t.OccurredAt.Format(dateLayout),
	}
}

func toSalaryPayload(s core.Salary) salaryPayload {
	return salaryPayload{
		ID:          s.ID,
		Amount:      s.Amount.InexactFloat64(),
		Description: s.Description,
		Date:        s.ReceivedAt.Format(dateLayout),
	}
}

func (s *Server) transactionFromRequest(r *http.Request, req transactionRequest) (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	occurred, err := parseRecordDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		UserID:      userID(r),
		Amount:      amount,
		Kind:        core.Kind(req.Kind),
		Description: req.Description,
		Category:    req.Category,
		OccurredAt:  occurred,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.storage.ListTransactions(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	payload := make([]transactionPayload, 0, len(txs))
	for _, t := range txs {
		payload = append(payload, toTransactionPayload(t))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.transactionFromRequest(r, req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.records.CreateTransaction(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionPayload(saved))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.storage.GetTransaction(r.Context(), userID(r), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Get transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionPayload(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.transactionFromRequest(r, req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	t.ID = id

	if err := s.records.UpdateTransaction(r.Context(), t); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.ErrorContext(r.Context(), "Update transaction failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, toTransactionPayload(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.records.DeleteTransaction(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListSalaries(w http.ResponseWriter, r *http.Request) {
	sals, err := s.storage.ListSalaries(r.Context(), userID(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List salaries failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list salaries")
		return
	}

	payload := make([]salaryPayload, 0, len(sals))
	for _, sal := range sals {
		payload = append(payload, toSalaryPayload(sal))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	received, err := parseRecordDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sal := core.Salary{
		UserID:      userID(r),
		Amount:      amount,
		Description: req.Description,
		ReceivedAt:  received,
	}
	if err := sal.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.records.CreateSalary(r.Context(), sal)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Create salary failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create salary")
		return
	}

	writeJSON(w, http.StatusCreated, toSalaryPayload(saved))
}

func (s *Server) handleDeleteSalary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.records.DeleteSalary(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "salary not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete salary failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete salary")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyName)
}
