package api

import (
	"net/http"

	"github.com/roomledger/roomledger/internal/alerts"
	"github.com/roomledger/roomledger/internal/analytics"
	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
)

type budgetRequest struct {
	Category      string  `json:"category"`
	Limit         float64 `json:"limit"`
	AlertsEnabled bool    `json:"alertsEnabled"`
}

type budgetResponse struct {
	ID            string  `json:"id"`
	Category      string  `json:"category"`
	Limit         float64 `json:"limit"`
	AlertsEnabled bool    `json:"alertsEnabled"`
	CurrentSpent  float64 `json:"currentSpent"`
	CreatedAt     int64   `json:"createdAt"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	budgets, err := s.budgets.ListBudgetsWithSpent(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = budgetResponse{
			ID:            b.ID,
			Category:      b.Category,
			Limit:         b.Limit,
			AlertsEnabled: b.AlertsEnabled,
			CurrentSpent:  b.CurrentSpent,
			CreatedAt:     b.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budget := &models.Budget{
		Category:      req.Category,
		Limit:         req.Limit,
		AlertsEnabled: req.AlertsEnabled,
	}
	if err := s.budgets.CreateBudget(r.Context(), userID, budget); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budgetResponse{
		ID:            budget.ID,
		Category:      budget.Category,
		Limit:         budget.Limit,
		AlertsEnabled: budget.AlertsEnabled,
		CreatedAt:     budget.CreatedAt,
	})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budget := &models.Budget{
		ID:            r.PathValue("id"),
		Category:      req.Category,
		Limit:         req.Limit,
		AlertsEnabled: req.AlertsEnabled,
	}
	if err := s.budgets.UpdateBudget(r.Context(), userID, budget); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		ID:            budget.ID,
		Category:      budget.Category,
		Limit:         budget.Limit,
		AlertsEnabled: budget.AlertsEnabled,
		CreatedAt:     budget.CreatedAt,
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.budgets.DeleteBudget(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	active, err := s.budgets.ActiveAlerts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if active == nil {
		active = []alerts.Alert{}
	}
	writeJSON(w, http.StatusOK, active)
}

type acknowledgeRequest struct {
	BudgetID  string `json:"budgetId"`
	Threshold int    `json:"threshold"`
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req acknowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.budgets.AcknowledgeAlert(r.Context(), userID, req.BudgetID, req.Threshold); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	period := analytics.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = analytics.PeriodMonth
	}

	overview, err := s.analytics.Overview(r.Context(), userID, period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
