//go:build integration

package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/simulado-cea/simulado-service/internal/config"
)

type client struct {
	t       *testing.T
	baseURL string
	http    *http.Client
	token   string

	// ip is sent as CF-Connecting-IP; auth rate limits are per client address
	ip string
}

func newClient(t *testing.T, baseURL, ip string) *client {
	return &client{t: t, baseURL: baseURL, ip: ip, http: &http.Client{
		Timeout: 10 * time.Second,
		// keep redirects visible to the test
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("CF-Connecting-IP", c.ip)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	// empty for 204/302
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (c *client) login(email, senha string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "senha": senha})
	require.Equal(c.t, http.StatusOK, status, "login failed: %v", body)
	tokens := body["data"].(map[string]any)["tokens"].(map[string]any)
	c.token = tokens["access_token"].(string)
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("Skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		tcpostgres.WithDatabase("simulado"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestE2E_RegisterLoginAdminLifecycle(t *testing.T) {
	cfg := testConfig("dev")
	cfg.DBAddr = startPostgres(t)
	cfg.GlobalRateLimit = 0

	deps := defaultDeps()
	deps.LoadConfig = func() (*config.Config, error) { return cfg, nil }

	srv, cleanup, err := NewServerWithDeps(deps)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	stamp := time.Now().UnixNano()
	userEmail := fmt.Sprintf("aluno_%d@test.com", stamp)

	// 1. register + login a student
	student := newClient(t, ts.URL, "198.51.100.10")
	status, body := student.do(http.MethodPost, "/api/cadastro", map[string]string{
		"nome": "Aluno Teste", "email": userEmail, "whatsapp": "+5511999999999", "senha": "segredo123",
	})
	require.Equal(t, http.StatusCreated, status, "cadastro failed: %v", body)

	status, _ = student.do(http.MethodPost, "/api/cadastro", map[string]string{
		"nome": "Outro", "email": userEmail, "whatsapp": "+5511888888888", "senha": "segredo123",
	})
	require.Equal(t, http.StatusConflict, status)

	student.login(userEmail, "segredo123")

	status, body = student.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	me := body["data"].(map[string]any)
	assert.Equal(t, userEmail, me["user"].(map[string]any)["email"])
	userID := me["user"].(map[string]any)["id"].(string)

	// 2. the student is not an admin
	status, body = student.do(http.MethodGet, "/api/admin-check", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, false, body["isAdmin"])

	status, _ = student.do(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, status)

	// 3. submit an exam
	status, body = student.do(http.MethodPost, "/api/simulados/submeter", map[string]any{
		"simuladoNumero": 1, "respostas": map[string]string{"1": "A"}, "acertos": 1, "total": 1,
		"tempoGastoSegundos": 30,
	})
	require.Equal(t, http.StatusOK, status, "submeter failed: %v", body)

	// 4. an allow-listed account administers users
	boss := newClient(t, ts.URL, "198.51.100.20")
	status, _ = boss.do(http.MethodPost, "/api/cadastro", map[string]string{
		"nome": "Chefe", "email": "boss@example.com", "whatsapp": "+5511777777777", "senha": "segredo123",
	})
	require.Equal(t, http.StatusCreated, status)
	boss.login("boss@example.com", "segredo123")

	status, body = boss.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["usuarios"], 2)
	stats := body["estatisticas"].(map[string]any)
	assert.EqualValues(t, 1, stats["totalSimulados"])

	status, body = boss.do(http.MethodPatch, "/api/admin/usuarios", map[string]string{
		"userId": userID, "action": "updateStatus", "status": "suspenso",
	})
	require.Equal(t, http.StatusOK, status, "patch failed: %v", body)
	assert.Equal(t, "suspenso", body["data"].(map[string]any)["status"])

	status, _ = student.do(http.MethodPost, "/api/auth/login", map[string]string{"email": userEmail, "senha": "segredo123"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = boss.do(http.MethodDelete, "/api/admin/usuarios", map[string]string{"userId": userID})
	require.Equal(t, http.StatusOK, status, "delete failed: %v", body)

	status, body = boss.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["usuarios"], 1)
}
