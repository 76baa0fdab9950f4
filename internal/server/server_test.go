package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/domain"
	"github.com/mhalkiad/compass/internal/events"
	"github.com/mhalkiad/compass/internal/modules/alerts"
	"github.com/mhalkiad/compass/internal/modules/budget"
	"github.com/mhalkiad/compass/internal/modules/goals"
	"github.com/mhalkiad/compass/internal/modules/ledger"
	"github.com/mhalkiad/compass/internal/modules/market"
	"github.com/mhalkiad/compass/internal/modules/portfolio"
	"github.com/mhalkiad/compass/internal/reconciler"
)

func newTestServer(t *testing.T) (*Server, *reconciler.Core) {
	t.Helper()
	db, err := database.New(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	nop := zerolog.Nop()
	bus := events.NewBus()
	core, err := reconciler.New(reconciler.Deps{
		Ledger:    ledger.NewService(ledger.NewRepository(db.DB, nop), nop),
		Budgets:   budget.NewTracker(budget.NewRepository(db.DB, nop), nop),
		Goals:     goals.NewTracker(goals.NewRepository(db.DB, nop), nop),
		Portfolio: portfolio.NewService(portfolio.NewRepository(db.DB, nop), nop),
		Alerts:    alerts.NewService(alerts.NewRepository(db.DB, nop), nop),
		Feed:      market.NewSimFeed(42, nop),
		Bus:       bus,
		DB:        db,
	}, nop)
	require.NoError(t, err)

	return New(core, bus, db, 0, nop), core
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/transactions", domain.Transaction{
		Amount: 50, Category: "Groceries", Type: domain.TransactionExpense, Date: time.Now(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tx domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	require.NotEmpty(t, tx.ID)

	rec = doJSON(t, h, http.MethodPut, "/api/transactions/"+tx.ID, domain.Transaction{
		Amount: 75, Category: "Groceries", Type: domain.TransactionExpense,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationMapsTo400(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/transactions", domain.Transaction{
		Amount: -1, Category: "x", Type: domain.TransactionExpense,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/transactions", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateBudgetMapsTo409(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	b := domain.Budget{Category: "Groceries", Amount: 400, Month: "March", Year: 2026}

	rec := doJSON(t, h, http.MethodPost, "/api/budgets", b)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/budgets", b)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBudgetStatusEndpoint(t *testing.T) {
	s, core := newTestServer(t)
	h := s.Handler()
	now := time.Now()

	rec := doJSON(t, h, http.MethodPost, "/api/budgets", domain.Budget{
		Category: "Groceries", Amount: 400, Month: now.Month().String(), Year: now.Year(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	_, err := core.AddTransaction(context.Background(), domain.Transaction{
		Amount: 300, Category: "groceries", Type: domain.TransactionExpense, Date: now,
	})
	require.NoError(t, err)

	rec = doJSON(t, h, http.MethodGet, "/api/budgets/Groceries/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st domain.BudgetStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 300.0, st.Spent)
	assert.Equal(t, 400.0, st.Budget)
	assert.Equal(t, 75.0, st.Percentage)
	assert.False(t, st.IsOverBudget)

	// a category without a budget still reports its spend, never over
	rec = doJSON(t, h, http.MethodGet, "/api/budgets/Dining/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Zero(t, st.Budget)
	assert.False(t, st.IsOverBudget)
}

func TestSnapshotEndpoint(t *testing.T) {
	s, core := newTestServer(t)

	_, err := core.AddTransaction(context.Background(), domain.Transaction{
		Amount: 10, Category: "Coffee", Type: domain.TransactionExpense, Date: time.Now(),
	})
	require.NoError(t, err)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	// snapshot reflects published state only; no pass has run yet
	assert.Empty(t, snap.Transactions)
}

func TestMarkAlertReadNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/alerts/nope/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportImportOverHTTP(t *testing.T) {
	src, core := newTestServer(t)
	ctx := context.Background()

	_, err := core.AddHolding(ctx, domain.Holding{Symbol: "AAPL", Shares: 5, AvgCost: 100})
	require.NoError(t, err)

	rec := doJSON(t, src.Handler(), http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.Bytes())

	dst, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(rec.Body.Bytes()))
	out := httptest.NewRecorder()
	dst.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)

	var result map[string]int
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &result))
	assert.Equal(t, 1, result["imported"])
}

func TestImportGarbageMapsTo400(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader([]byte("junk")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, fmt.Sprintf("/api/%s", "nothing"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
