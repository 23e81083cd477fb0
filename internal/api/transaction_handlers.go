package api

import (
	"net/http"

	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
)

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type expenseResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   int64   `json:"createdAt"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := s.transactions.ListExpenses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := &models.Expense{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.transactions.CreateExpense(r.Context(), userID, expense); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := &models.Expense{
		ID:          r.PathValue("id"),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.transactions.UpdateExpense(r.Context(), userID, expense); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.transactions.DeleteExpense(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incomeRequest struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type incomeResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   int64   `json:"createdAt"`
}

func toIncomeResponse(in *models.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		Amount:      in.Amount,
		Type:        string(in.Type),
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   in.CreatedAt,
	}
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	income, err := s.transactions.ListIncome(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]incomeResponse, len(income))
	for i, in := range income {
		out[i] = toIncomeResponse(in)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	income := &models.Income{
		Amount:      req.Amount,
		Type:        models.IncomeType(req.Type),
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.transactions.CreateIncome(r.Context(), userID, income); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(income))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	income := &models.Income{
		ID:          r.PathValue("id"),
		Amount:      req.Amount,
		Type:        models.IncomeType(req.Type),
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.transactions.UpdateIncome(r.Context(), userID, income); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.transactions.DeleteIncome(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	IsIncome    bool    `json:"isIncome"`
	IncomeType  string  `json:"incomeType,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	txns, err := s.transactions.ListTransactions(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]transactionResponse, len(txns))
	for i, t := range txns {
		out[i] = transactionResponse{
			ID:          t.ID,
			Date:        t.Date,
			Category:    t.Category,
			Description: t.Description,
			Amount:      t.Amount,
			IsIncome:    t.IsIncome,
			IncomeType:  string(t.IncomeType),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWipeUserData(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.transactions.WipeUserData(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
