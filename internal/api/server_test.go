package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/app/funzone"
	"github.com/rbxsim/rbxsim/internal/app/ledger"
	"github.com/rbxsim/rbxsim/internal/app/profile"
	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/kvstore"
)

func setupServer(t *testing.T) (*Server, *kvstore.Store) {
	t.Helper()

	store, err := kvstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	now := time.Now
	wallet := ledger.NewCoordinator(store, logger, now, 100000)
	fz := funzone.NewService(funzone.DefaultConfig(), wallet, store, logger, domain.NewRand(42), now)
	prof := profile.NewService(store, logger, now)

	return NewServer(wallet, fz, prof, store, logger, now), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/version", nil)
	var v map[string]string
	decode(t, rec, &v)
	if v["version"] != Version {
		t.Fatalf("version = %q, want %q", v["version"], Version)
	}
}

func TestWalletCreditDebitFlow(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/wallet/credit", manualTransactionRequest{Amount: 500, Description: "Gift"})
	if rec.Code != http.StatusOK {
		t.Fatalf("credit status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/wallet/debit", manualTransactionRequest{Amount: 120, Description: "Hat"})
	if rec.Code != http.StatusOK {
		t.Fatalf("debit status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/wallet", nil)
	var bal domain.BalanceRecord
	decode(t, rec, &bal)
	if bal.Balance != 380 {
		t.Fatalf("balance = %d, want 380", bal.Balance)
	}
}

func TestWalletValidationFailures(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		path string
		req  manualTransactionRequest
	}{
		{"negative credit", "/api/wallet/credit", manualTransactionRequest{Amount: -5}},
		{"zero credit", "/api/wallet/credit", manualTransactionRequest{Amount: 0}},
		{"above ceiling", "/api/wallet/credit", manualTransactionRequest{Amount: 100001}},
		{"debit exceeds balance", "/api/wallet/debit", manualTransactionRequest{Amount: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, tt.path, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var result domain.ValidationResult
			decode(t, rec, &result)
			if result.Valid || result.Reason == "" {
				t.Fatalf("result = %+v, want invalid with a reason", result)
			}
		})
	}
}

func TestTransactionsListAndRemove(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/wallet/credit", manualTransactionRequest{Amount: 10, Description: "a"})
	doJSON(t, h, http.MethodPost, "/api/wallet/credit", manualTransactionRequest{Amount: 20, Description: "b"})

	rec := doJSON(t, h, http.MethodGet, "/api/wallet/transactions?limit=1", nil)
	var list struct {
		Transactions []domain.TransactionEntry `json:"transactions"`
		Count        int                       `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 || list.Transactions[0].Amount != 20 {
		t.Fatalf("limited list = %+v, want only the newest entry", list)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/wallet/transactions/"+list.Transactions[0].ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodDelete, "/api/wallet/transactions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing status = %d, want 404", rec.Code)
	}
}

func TestSpinEndpointGatesOut(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/funzone/spin", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("spin %d status = %d", i, rec.Code)
		}
		var out funzone.RewardOutcome
		decode(t, rec, &out)
		if !out.OK || out.Value <= 0 {
			t.Fatalf("spin %d = %+v", i, out)
		}
	}

	// Exhausted gate is still a 200 — just ok=false.
	rec := doJSON(t, h, http.MethodPost, "/api/funzone/spin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fourth spin status = %d, want 200", rec.Code)
	}
	var out funzone.RewardOutcome
	decode(t, rec, &out)
	if out.OK {
		t.Fatal("fourth spin should report ok=false")
	}
}

func TestScratchEndpointsHideValueUntilReveal(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/funzone/scratch", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("new card status = %d", rec.Code)
	}
	var created map[string]json.RawMessage
	decode(t, rec, &created)
	if bytes.Contains(created["card"], []byte(`"value"`)) {
		t.Fatal("card value leaked before the reveal")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/funzone/scratch/reveal", nil)
	var out funzone.RewardOutcome
	decode(t, rec, &out)
	if !out.OK || out.Value <= 0 {
		t.Fatalf("reveal = %+v", out)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/funzone/scratch/reveal", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second reveal status = %d, want 409", rec.Code)
	}
}

func TestRevealWithoutCardIsNotFound(t *testing.T) {
	srv, _ := setupServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/funzone/scratch/reveal", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestQuizEndpoints(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/funzone/quiz/start", nil)
	var q funzone.QuizQuestion
	decode(t, rec, &q)
	if q.Total != 10 || len(q.Options) == 0 {
		t.Fatalf("first question = %+v", q)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/funzone/quiz/answer", quizAnswerRequest{Choice: 99})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range answer status = %d, want 400", rec.Code)
	}

	for i := 0; i < 10; i++ {
		rec = doJSON(t, h, http.MethodPost, "/api/funzone/quiz/answer", quizAnswerRequest{Choice: 0})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d status = %d", i, rec.Code)
		}
	}

	rec = doJSON(t, h, http.MethodPost, "/api/funzone/quiz/answer", quizAnswerRequest{Choice: 0})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("post-game answer status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/funzone/quiz/stats", nil)
	var stats domain.QuizStats
	decode(t, rec, &stats)
	if stats.GamesPlayed != 1 {
		t.Fatalf("games played = %d, want 1", stats.GamesPlayed)
	}
}

func TestExportBundle(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/wallet/credit", manualTransactionRequest{Amount: 75, Description: "seed"})

	rec := doJSON(t, h, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	var bundle domain.ExportBundle
	decode(t, rec, &bundle)
	if bundle.Coin.Balance != 75 || len(bundle.Transactions) != 1 {
		t.Fatalf("bundle = %+v", bundle)
	}
	if bundle.AppVersion != Version || bundle.ExportedAt.IsZero() {
		t.Fatalf("bundle metadata = %q / %v", bundle.AppVersion, bundle.ExportedAt)
	}
}

func TestClearAllWipesEverything(t *testing.T) {
	srv, store := setupServer(t)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/api/wallet/credit", manualTransactionRequest{Amount: 75, Description: "seed"})
	srv.wallet.Wait()

	rec := doJSON(t, h, http.MethodDelete, "/api/data", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/wallet", nil)
	var bal domain.BalanceRecord
	decode(t, rec, &bal)
	if bal.Balance != 0 {
		t.Fatalf("balance after clear = %d, want 0", bal.Balance)
	}

	for _, key := range domain.AllKeys() {
		raw, err := store.Get(context.Background(), key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if raw != nil {
			t.Fatalf("key %s survived clear-all", key)
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPut, "/api/settings", domain.SettingsRecord{Theme: "dark", SoundEnabled: false})
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/settings", nil)
	var settings domain.SettingsRecord
	decode(t, rec, &settings)
	if settings.Theme != "dark" || settings.SoundEnabled {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestUserRoundTrip(t *testing.T) {
	srv, _ := setupServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPut, "/api/user", domain.UserRecord{Username: "builder", AvatarIndex: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("put user status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/user", nil)
	var user domain.UserRecord
	decode(t, rec, &user)
	if user.Username != "builder" || user.AvatarIndex != 2 || user.CreatedAt.IsZero() {
		t.Fatalf("user = %+v", user)
	}
}
