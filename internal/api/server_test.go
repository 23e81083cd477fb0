package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/cache"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "roomledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-for-tests", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	transactions := service.NewTransactionService(store)
	budgets := service.NewBudgetService(store, transactions)
	analyticsService := service.NewAnalyticsService(transactions)
	rooms := service.NewRoomService(store, cache.NewMemoryCache())
	authService := service.NewAuthService(authenticator, jwtManager)

	srv := NewServer(jwtManager, authService, transactions, budgets, analyticsService, rooms)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional auth token and decodes the
// response body into out when it is non-nil.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerViaAPI(t *testing.T, ts *httptest.Server, email, name string) (userID, token string) {
	t.Helper()

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	status := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"displayName": name,
		"password":    "correct-horse",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}
	return resp.User.ID, resp.Token
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	_, token := registerViaAPI(t, ts, "alice@example.com", "Alice")
	if token == "" {
		t.Fatal("expected a session token")
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "alice@example.com", "displayName": "Imposter", "password": "correct-horse",
		}, nil)
		if status != http.StatusConflict {
			t.Errorf("got %d, want 409", status)
		}
	})

	t.Run("short password is rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "bob@example.com", "displayName": "Bob", "password": "short",
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got %d, want 400", status)
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrong-password",
		}, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("got %d, want 401", status)
		}
	})

	t.Run("login is case-insensitive on email", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ALICE@example.com", "password": "correct-horse",
		}, nil)
		if status != http.StatusOK {
			t.Errorf("got %d, want 200", status)
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, "/api/expenses", "", nil, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("got %d, want 401", status)
		}
	})

	t.Run("me returns the identity from the token", func(t *testing.T) {
		var me struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		status := doJSON(t, ts, http.MethodGet, "/api/me", token, nil, &me)
		if status != http.StatusOK {
			t.Fatalf("got %d, want 200", status)
		}
		if me.ID == "" || me.Email != "alice@example.com" {
			t.Errorf("me = %+v, want alice@example.com with an ID", me)
		}
	})
}

func TestExpenseEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, token := registerViaAPI(t, ts, "carol@example.com", "Carol")

	var created struct {
		ID string `json:"id"`
	}
	status := doJSON(t, ts, http.MethodPost, "/api/expenses", token, map[string]any{
		"amount": 42.5, "category": "Groceries", "date": "2025-03-10",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create returned %d", status)
	}
	if created.ID == "" {
		t.Fatal("expected generated expense ID")
	}

	t.Run("zero amount is rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/expenses", token, map[string]any{
			"amount": 0, "category": "Groceries",
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got %d, want 400", status)
		}
	})

	t.Run("list returns the expense", func(t *testing.T) {
		var expenses []map[string]any
		status := doJSON(t, ts, http.MethodGet, "/api/expenses", token, nil, &expenses)
		if status != http.StatusOK || len(expenses) != 1 {
			t.Errorf("status %d, %d expenses, want 200 and 1", status, len(expenses))
		}
	})

	t.Run("update keeps the creation timestamp", func(t *testing.T) {
		var updated struct {
			Amount    float64 `json:"amount"`
			CreatedAt int64   `json:"createdAt"`
		}
		status := doJSON(t, ts, http.MethodPut, "/api/expenses/"+created.ID, token, map[string]any{
			"amount": 60, "category": "Groceries", "date": "2025-03-10",
		}, &updated)
		if status != http.StatusOK {
			t.Fatalf("update returned %d", status)
		}
		if updated.Amount != 60 {
			t.Errorf("amount = %v, want 60", updated.Amount)
		}
		if updated.CreatedAt == 0 {
			t.Error("updated expense lost its createdAt")
		}
	})

	t.Run("deleting an unknown expense is 404", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodDelete, "/api/expenses/nope", token, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("got %d, want 404", status)
		}
	})

	t.Run("another user cannot delete it", func(t *testing.T) {
		_, otherToken := registerViaAPI(t, ts, "dave@example.com", "Dave")
		status := doJSON(t, ts, http.MethodDelete, "/api/expenses/"+created.ID, otherToken, nil, nil)
		if status != http.StatusNotFound {
			t.Errorf("got %d, want 404", status)
		}
	})
}

func TestRoomEndpoints(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := registerViaAPI(t, ts, "alice@example.com", "Alice")
	bobID, bobToken := registerViaAPI(t, ts, "bob@example.com", "Bob")

	var room struct {
		ID         string `json:"id"`
		InviteCode string `json:"inviteCode"`
	}
	status := doJSON(t, ts, http.MethodPost, "/api/rooms", aliceToken, map[string]string{"name": "Flat 4B"}, &room)
	if status != http.StatusCreated {
		t.Fatalf("create room returned %d", status)
	}

	status = doJSON(t, ts, http.MethodPost, "/api/rooms/join", bobToken, map[string]string{"inviteCode": room.InviteCode}, nil)
	if status != http.StatusOK {
		t.Fatalf("join room returned %d", status)
	}

	t.Run("bad invite code is 404", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/rooms/join", bobToken, map[string]string{"inviteCode": "deadbeef"}, nil)
		if status != http.StatusNotFound {
			t.Errorf("got %d, want 404", status)
		}
	})

	t.Run("invite preview works without a token", func(t *testing.T) {
		var preview struct {
			RoomName      string `json:"roomName"`
			MemberCount   int    `json:"memberCount"`
			AlreadyMember bool   `json:"alreadyMember"`
		}
		status := doJSON(t, ts, http.MethodGet, "/api/invites/"+room.InviteCode, "", nil, &preview)
		if status != http.StatusOK {
			t.Fatalf("preview returned %d", status)
		}
		if preview.RoomName != "Flat 4B" || preview.MemberCount != 2 || preview.AlreadyMember {
			t.Errorf("anonymous preview = %+v", preview)
		}

		status = doJSON(t, ts, http.MethodGet, "/api/invites/"+room.InviteCode, bobToken, nil, &preview)
		if status != http.StatusOK {
			t.Fatalf("preview returned %d", status)
		}
		if !preview.AlreadyMember {
			t.Error("expected member preview to report alreadyMember")
		}

		if status := doJSON(t, ts, http.MethodGet, "/api/invites/deadbeef", "", nil, nil); status != http.StatusNotFound {
			t.Errorf("unknown code returned %d, want 404", status)
		}
	})

	status = doJSON(t, ts, http.MethodPost, fmt.Sprintf("/api/rooms/%s/expenses", room.ID), aliceToken, map[string]any{
		"amount": 90, "category": "Groceries", "paidBy": aliceID, "splitType": "equal",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("add shared expense returned %d", status)
	}

	t.Run("mismatched custom splits are rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/api/rooms/%s/expenses", room.ID), aliceToken, map[string]any{
			"amount": 100, "category": "Dining", "paidBy": aliceID, "splitType": "custom",
			"splits": []map[string]any{
				{"userId": aliceID, "amount": 10},
				{"userId": bobID, "amount": 10},
			},
		}, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got %d, want 400", status)
		}
	})

	t.Run("balances reflect the equal split", func(t *testing.T) {
		var balances struct {
			OwedToEach []struct {
				ToUserID string  `json:"toUserId"`
				Amount   float64 `json:"amount"`
			} `json:"owedToEach"`
		}
		status := doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/rooms/%s/balances", room.ID), bobToken, nil, &balances)
		if status != http.StatusOK {
			t.Fatalf("balances returned %d", status)
		}
		if len(balances.OwedToEach) != 1 || balances.OwedToEach[0].ToUserID != aliceID {
			t.Fatalf("OwedToEach = %+v, want one debt to Alice", balances.OwedToEach)
		}
		if got := balances.OwedToEach[0].Amount; got < 44.99 || got > 45.01 {
			t.Errorf("amount = %v, want 45", got)
		}
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		_, eveToken := registerViaAPI(t, ts, "eve@example.com", "Eve")
		status := doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/rooms/%s/balances", room.ID), eveToken, nil, nil)
		if status != http.StatusForbidden {
			t.Errorf("got %d, want 403", status)
		}
	})

	t.Run("settlement clears the debt", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, fmt.Sprintf("/api/rooms/%s/settlements", room.ID), bobToken, map[string]any{
			"fromUserId": bobID, "toUserId": aliceID, "amount": 45,
		}, nil)
		if status != http.StatusCreated {
			t.Fatalf("settlement returned %d", status)
		}

		var balances struct {
			OwedToEach []struct {
				Amount float64 `json:"amount"`
			} `json:"owedToEach"`
		}
		status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/rooms/%s/balances", room.ID), bobToken, nil, &balances)
		if status != http.StatusOK {
			t.Fatalf("balances returned %d", status)
		}
		if len(balances.OwedToEach) != 0 {
			t.Errorf("OwedToEach = %+v, want empty", balances.OwedToEach)
		}
	})

	t.Run("only the owner deletes the room", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodDelete, "/api/rooms/"+room.ID, bobToken, nil, nil)
		if status != http.StatusForbidden {
			t.Errorf("got %d, want 403", status)
		}
		status = doJSON(t, ts, http.MethodDelete, "/api/rooms/"+room.ID, aliceToken, nil, nil)
		if status != http.StatusNoContent {
			t.Errorf("got %d, want 204", status)
		}
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, token := registerViaAPI(t, ts, "fay@example.com", "Fay")

	today := time.Now().Format("2006-01-02")
	for _, body := range []map[string]any{
		{"amount": 80, "category": "Groceries", "date": today},
		{"amount": 20, "category": "Transport", "date": today},
	} {
		if status := doJSON(t, ts, http.MethodPost, "/api/expenses", token, body, nil); status != http.StatusCreated {
			t.Fatalf("create expense returned %d", status)
		}
	}

	var overview struct {
		Period    string `json:"period"`
		Breakdown []struct {
			Name    string  `json:"name"`
			Percent float64 `json:"percent"`
		} `json:"breakdown"`
	}
	status := doJSON(t, ts, http.MethodGet, "/api/analytics?period=month", token, nil, &overview)
	if status != http.StatusOK {
		t.Fatalf("analytics returned %d", status)
	}
	if overview.Period != "month" || len(overview.Breakdown) != 2 {
		t.Errorf("overview = %+v, want month period with 2 categories", overview)
	}

	t.Run("unknown period is rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, "/api/analytics?period=decade", token, nil, nil)
		if status != http.StatusBadRequest {
			t.Errorf("got %d, want 400", status)
		}
	})
}
