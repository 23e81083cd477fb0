package api

import (
	"net/http"

	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
)

type roomResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CreatedBy  string `json:"createdBy"`
	InviteCode string `json:"inviteCode"`
	CreatedAt  int64  `json:"createdAt"`
}

type memberResponse struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
}

func toRoomResponse(room *models.Room) roomResponse {
	return roomResponse{
		ID:         room.ID,
		Name:       room.Name,
		CreatedBy:  room.CreatedBy,
		InviteCode: room.InviteCode,
		CreatedAt:  room.CreatedAt,
	}
}

func toMemberResponses(members []*models.RoomMember) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = memberResponse{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		}
	}
	return out
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	rooms, err := s.rooms.ListRooms(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]roomResponse, len(rooms))
	for i, room := range rooms {
		out[i] = toRoomResponse(room)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := s.rooms.CreateRoom(r.Context(), userID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := s.rooms.JoinRoom(r.Context(), userID, req.InviteCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// handlePreviewInvite is reachable without a token. The user ID is
// empty for anonymous callers, so alreadyMember stays false for them.
func (s *Server) handlePreviewInvite(w http.ResponseWriter, r *http.Request) {
	preview, err := s.rooms.PreviewInvite(r.Context(), r.PathValue("code"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"roomName":      preview.RoomName,
		"memberCount":   preview.MemberCount,
		"alreadyMember": preview.AlreadyMember,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	room, members, err := s.rooms.GetRoom(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		roomResponse
		Members []memberResponse `json:"members"`
	}{toRoomResponse(room), toMemberResponses(members)})
}

func (s *Server) handleRenameRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.rooms.RenameRoom(r.Context(), r.PathValue("id"), userID, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.DeleteRoom(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.LeaveRoom(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.RemoveMember(r.Context(), r.PathValue("id"), userID, r.PathValue("userId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	members, err := s.rooms.ListMembers(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponses(members))
}

type sharedExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	PaidBy      string  `json:"paidBy"`
	SplitType   string  `json:"splitType"`
	Splits      []struct {
		UserID string  `json:"userId"`
		Amount float64 `json:"amount"`
	} `json:"splits"`
}

type sharedExpenseResponse struct {
	ID          string  `json:"id"`
	RoomID      string  `json:"roomId"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	PaidBy      string  `json:"paidBy"`
	SplitType   string  `json:"splitType"`
	CreatedAt   int64   `json:"createdAt"`
}

func toSharedExpenseResponse(e *models.SharedExpense) sharedExpenseResponse {
	return sharedExpenseResponse{
		ID:          e.ID,
		RoomID:      e.RoomID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		PaidBy:      e.PaidBy,
		SplitType:   string(e.SplitType),
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Server) handleListSharedExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	expenses, err := s.rooms.ListSharedExpenses(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]sharedExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toSharedExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddSharedExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req sharedExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := &models.SharedExpense{
		RoomID:      r.PathValue("id"),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		PaidBy:      req.PaidBy,
		SplitType:   models.SplitType(req.SplitType),
	}
	splits := make([]models.ExpenseSplit, len(req.Splits))
	for i, sp := range req.Splits {
		splits[i] = models.ExpenseSplit{UserID: sp.UserID, Amount: sp.Amount}
	}

	if err := s.rooms.AddSharedExpense(r.Context(), userID, expense, splits); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSharedExpenseResponse(expense))
}

func (s *Server) handleDeleteSharedExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.DeleteSharedExpense(r.Context(), r.PathValue("id"), userID, r.PathValue("expenseId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settlementRequest struct {
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note"`
}

type settlementResponse struct {
	ID              string  `json:"id"`
	RoomID          string  `json:"roomId"`
	FromUserID      string  `json:"fromUserId"`
	ToUserID        string  `json:"toUserId"`
	FromDisplayName string  `json:"fromDisplayName,omitempty"`
	ToDisplayName   string  `json:"toDisplayName,omitempty"`
	Amount          float64 `json:"amount"`
	Note            string  `json:"note"`
	CreatedAt       int64   `json:"createdAt"`
}

func toSettlementResponse(st *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:         st.ID,
		RoomID:     st.RoomID,
		FromUserID: st.FromUserID,
		ToUserID:   st.ToUserID,
		Amount:     st.Amount,
		Note:       st.Note,
		CreatedAt:  st.CreatedAt,
	}
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	settlements, err := s.rooms.ListSettlements(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]settlementResponse, len(settlements))
	for i, st := range settlements {
		out[i] = toSettlementResponse(&st.Settlement)
		out[i].FromDisplayName = st.FromDisplayName
		out[i].ToDisplayName = st.ToDisplayName
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecordSettlement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settlement := &models.Settlement{
		RoomID:     r.PathValue("id"),
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Note:       req.Note,
	}
	if err := s.rooms.RecordSettlement(r.Context(), userID, settlement); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (s *Server) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.DeleteSettlement(r.Context(), r.PathValue("id"), userID, r.PathValue("settlementId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	balances, err := s.rooms.Balances(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

type roomBudgetRequest struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}

type roomBudgetResponse struct {
	ID           string  `json:"id"`
	Category     string  `json:"category"`
	Limit        float64 `json:"limit"`
	CurrentSpent float64 `json:"currentSpent"`
	CreatedAt    int64   `json:"createdAt"`
}

func (s *Server) handleListRoomBudgets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	budgets, err := s.rooms.ListRoomBudgets(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]roomBudgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = roomBudgetResponse{
			ID:           b.ID,
			Category:     b.Category,
			Limit:        b.Limit,
			CurrentSpent: b.CurrentSpent,
			CreatedAt:    b.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRoomBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req roomBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budget := &models.RoomBudget{
		RoomID:   r.PathValue("id"),
		Category: req.Category,
		Limit:    req.Limit,
	}
	if err := s.rooms.CreateRoomBudget(r.Context(), userID, budget); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomBudgetResponse{
		ID:        budget.ID,
		Category:  budget.Category,
		Limit:     budget.Limit,
		CreatedAt: budget.CreatedAt,
	})
}

func (s *Server) handleDeleteRoomBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.rooms.DeleteRoomBudget(r.Context(), r.PathValue("id"), userID, r.PathValue("budgetId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
