// Package api exposes the REST surface: JSON request/response handling,
// routing, and the mapping from service errors to HTTP statuses.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage"
)

// Server holds the services behind the REST API.
type Server struct {
	jwtManager   *auth.JWTManager
	auth         *service.AuthService
	transactions *service.TransactionService
	budgets      *service.BudgetService
	analytics    *service.AnalyticsService
	rooms        *service.RoomService
}

// NewServer creates a Server wired to the given services.
func NewServer(
	jwtManager *auth.JWTManager,
	authService *service.AuthService,
	transactions *service.TransactionService,
	budgets *service.BudgetService,
	analytics *service.AnalyticsService,
	rooms *service.RoomService,
) *Server {
	return &Server{
		jwtManager:   jwtManager,
		auth:         authService,
		transactions: transactions,
		budgets:      budgets,
		analytics:    analytics,
		rooms:        rooms,
	}
}

// Handler builds the route table. Everything under /api except auth
// requires a Bearer token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/me", s.authed(s.handleMe))

	// Invite previews work without a token so the code can be inspected
	// before signing up, but a logged-in caller learns membership too.
	mux.Handle("GET /api/invites/{code}", middleware.OptionalAuth(s.jwtManager, http.HandlerFunc(s.handlePreviewInvite)))

	mux.Handle("GET /api/expenses", s.authed(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.authed(s.handleCreateExpense))
	mux.Handle("PUT /api/expenses/{id}", s.authed(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.authed(s.handleDeleteExpense))

	mux.Handle("GET /api/income", s.authed(s.handleListIncome))
	mux.Handle("POST /api/income", s.authed(s.handleCreateIncome))
	mux.Handle("PUT /api/income/{id}", s.authed(s.handleUpdateIncome))
	mux.Handle("DELETE /api/income/{id}", s.authed(s.handleDeleteIncome))

	mux.Handle("GET /api/transactions", s.authed(s.handleListTransactions))

	mux.Handle("GET /api/budgets", s.authed(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.authed(s.handleCreateBudget))
	mux.Handle("PUT /api/budgets/{id}", s.authed(s.handleUpdateBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.authed(s.handleDeleteBudget))
	mux.Handle("GET /api/alerts", s.authed(s.handleActiveAlerts))
	mux.Handle("POST /api/alerts/acknowledge", s.authed(s.handleAcknowledgeAlert))

	mux.Handle("GET /api/analytics", s.authed(s.handleAnalytics))

	mux.Handle("GET /api/rooms", s.authed(s.handleListRooms))
	mux.Handle("POST /api/rooms", s.authed(s.handleCreateRoom))
	mux.Handle("POST /api/rooms/join", s.authed(s.handleJoinRoom))
	mux.Handle("GET /api/rooms/{id}", s.authed(s.handleGetRoom))
	mux.Handle("PUT /api/rooms/{id}", s.authed(s.handleRenameRoom))
	mux.Handle("DELETE /api/rooms/{id}", s.authed(s.handleDeleteRoom))
	mux.Handle("POST /api/rooms/{id}/leave", s.authed(s.handleLeaveRoom))
	mux.Handle("GET /api/rooms/{id}/members", s.authed(s.handleListMembers))
	mux.Handle("DELETE /api/rooms/{id}/members/{userId}", s.authed(s.handleRemoveMember))

	mux.Handle("GET /api/rooms/{id}/expenses", s.authed(s.handleListSharedExpenses))
	mux.Handle("POST /api/rooms/{id}/expenses", s.authed(s.handleAddSharedExpense))
	mux.Handle("DELETE /api/rooms/{id}/expenses/{expenseId}", s.authed(s.handleDeleteSharedExpense))

	mux.Handle("GET /api/rooms/{id}/settlements", s.authed(s.handleListSettlements))
	mux.Handle("POST /api/rooms/{id}/settlements", s.authed(s.handleRecordSettlement))
	mux.Handle("DELETE /api/rooms/{id}/settlements/{settlementId}", s.authed(s.handleDeleteSettlement))

	mux.Handle("GET /api/rooms/{id}/balances", s.authed(s.handleBalances))

	mux.Handle("GET /api/rooms/{id}/budgets", s.authed(s.handleListRoomBudgets))
	mux.Handle("POST /api/rooms/{id}/budgets", s.authed(s.handleCreateRoomBudget))
	mux.Handle("DELETE /api/rooms/{id}/budgets/{budgetId}", s.authed(s.handleDeleteRoomBudget))

	mux.Handle("DELETE /api/user/data", s.authed(s.handleWipeUserData))

	return mux
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.jwtManager, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service and storage errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
