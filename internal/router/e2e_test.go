//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chathuwa-whiz/zors-pos/internal/config"
	"github.com/chathuwa-whiz/zors-pos/internal/infra"
	"github.com/chathuwa-whiz/zors-pos/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("zors_test"),
		tcPostgres.WithUsername("zors"),
		tcPostgres.WithPassword("zors"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		CardSurchargePct:   2.5,
		WorkerPoolSize:     1,
		TabStateTTLHours:   72,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), 12)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
		INSERT INTO users (id, username, name, password_hash, role, active, created_at, updated_at)
		VALUES (gen_random_uuid(), 'admin', 'Admin E2E', ?, 'admin', true, NOW(), NOW())
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	srv := httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "e2e-password"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) createProduct(t *testing.T, name string, price float64, stock int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":          name,
			"category":      "drinks",
			"cost_price":    price / 2,
			"selling_price": price,
			"initial_stock": stock,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

type tabEnvelope struct {
	Order struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
	} `json:"order"`
	Totals struct {
		Subtotal   string `json:"subtotal"`
		Total      string `json:"total"`
		FinalTotal string `json:"final_total"`
	} `json:"totals"`
	Active bool `json:"active"`
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullCheckoutCycle(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "Cola 500ml", 250, 20)

	// Add two units to the default tab.
	for i := 0; i < 2; i++ {
		resp := do(t, env.server, "POST", "/v1/tabs/cart/items",
			jsonBody(t, map[string]string{"product_id": prodID}), env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	activeResp := do(t, env.server, "GET", "/v1/tabs/active", nil, env.token)
	require.Equal(t, http.StatusOK, activeResp.StatusCode)
	var tab tabEnvelope
	decodeJSON(t, activeResp, &tab)
	require.Len(t, tab.Order.Items, 1)
	assert.Equal(t, 2, tab.Order.Items[0].Quantity)
	assert.Equal(t, "500", tab.Totals.Total)

	// building → checkout → payment → completed
	resp := do(t, env.server, "POST", "/v1/tabs/"+tab.Order.ID+"/checkout", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "PUT", "/v1/tabs/"+tab.Order.ID+"/payment",
		jsonBody(t, map[string]any{"method": "cash", "cash_given": "600"}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	completeResp := do(t, env.server, "POST", "/v1/tabs/"+tab.Order.ID+"/complete", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, completeResp.StatusCode)
	var completion struct {
		Change        string  `json:"change"`
		LedgerWarning *string `json:"ledger_warning"`
	}
	decodeJSON(t, completeResp, &completion)
	assert.Equal(t, "100", completion.Change)
	assert.Nil(t, completion.LedgerWarning)

	// The sale landed in the ledger and the counter agrees with it.
	ledgerResp := do(t, env.server, "GET", "/v1/stock/ledger?product_id="+prodID+"&kind=sale", nil, env.token)
	require.Equal(t, http.StatusOK, ledgerResp.StatusCode)
	var ledger struct {
		Data []struct {
			Quantity int `json:"quantity"`
			NewStock int `json:"new_stock"`
		} `json:"data"`
	}
	decodeJSON(t, ledgerResp, &ledger)
	require.Len(t, ledger.Data, 1)
	assert.Equal(t, -2, ledger.Data[0].Quantity)
	assert.Equal(t, 18, ledger.Data[0].NewStock)

	reconResp := do(t, env.server, "GET", "/v1/stock/reconcile/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, reconResp.StatusCode)
	var recon struct {
		InAgreement bool `json:"in_agreement"`
		Drift       int  `json:"drift"`
	}
	decodeJSON(t, reconResp, &recon)
	assert.True(t, recon.InAgreement)
	assert.Equal(t, 0, recon.Drift)

	// The completed order is in the history.
	ordersResp := do(t, env.server, "GET", "/v1/orders", nil, env.token)
	require.Equal(t, http.StatusOK, ordersResp.StatusCode)
	var history struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, ordersResp, &history)
	assert.Equal(t, int64(1), history.Total)
}

func TestE2E_LastUnitCannotBeSoldTwice(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "Limited Edition", 100, 1)

	resp := do(t, env.server, "POST", "/v1/tabs/cart/items",
		jsonBody(t, map[string]string{"product_id": prodID}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A second tab cannot claim the same unit.
	newTab := do(t, env.server, "POST", "/v1/tabs", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, newTab.StatusCode)
	newTab.Body.Close()

	conflict := do(t, env.server, "POST", "/v1/tabs/cart/items",
		jsonBody(t, map[string]string{"product_id": prodID}), env.token)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)
	conflict.Body.Close()
}

func TestE2E_ManualStockEvent(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "Chips", 120, 10)

	resp := do(t, env.server, "POST", "/v1/stock/events",
		jsonBody(t, map[string]any{
			"product_id": prodID,
			"kind":       "adjustment",
			"quantity":   -3,
			"note":       "breakage",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry struct {
		NewStock int `json:"new_stock"`
	}
	decodeJSON(t, resp, &entry)
	assert.Equal(t, 7, entry.NewStock)

	// Over-draining is refused at the counter.
	over := do(t, env.server, "POST", "/v1/stock/events",
		jsonBody(t, map[string]any{
			"product_id": prodID,
			"kind":       "adjustment",
			"quantity":   -50,
		}), env.token)
	assert.Equal(t, http.StatusConflict, over.StatusCode)
	over.Body.Close()

	recon := do(t, env.server, "GET", fmt.Sprintf("/v1/stock/reconcile/%s", prodID), nil, env.token)
	require.Equal(t, http.StatusOK, recon.StatusCode)
	var r struct {
		InAgreement bool `json:"in_agreement"`
		LedgerTotal int  `json:"ledger_total"`
	}
	decodeJSON(t, recon, &r)
	assert.True(t, r.InAgreement)
	assert.Equal(t, 7, r.LedgerTotal)
}

func TestE2E_TabsSurviveRestart(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "Water 1L", 80, 5)

	resp := do(t, env.server, "POST", "/v1/tabs/cart/items",
		jsonBody(t, map[string]string{"product_id": prodID}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A fresh login simulates the register reopening: the session manager
	// restores the open tabs from the tab store.
	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "e2e-password"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)

	activeResp := do(t, env.server, "GET", "/v1/tabs/active", nil, loginBody.AccessToken)
	require.Equal(t, http.StatusOK, activeResp.StatusCode)
	var tab tabEnvelope
	decodeJSON(t, activeResp, &tab)
	require.Len(t, tab.Order.Items, 1)
	assert.Equal(t, prodID, tab.Order.Items[0].ProductID)
}
