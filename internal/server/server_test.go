package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AlertConsoleAPI/internal/config"
	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/handler"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/metrics"
	"AlertConsoleAPI/internal/service"
	"AlertConsoleAPI/internal/session"
	"AlertConsoleAPI/internal/websocket"
)

const backend = "http://backend.test"

type fixture struct {
	handler   http.Handler
	transport *httpmock.MockTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 3000},
		Gateway: config.GatewayConfig{BaseURL: backend, Timeout: time.Second},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		},
		Trigger: config.TriggerConfig{Concurrency: 2},
	}
	log := logger.NewNop()
	m := metrics.New()
	cookies := session.NewCookies(session.CookieConfig{})

	transport := httpmock.NewMockTransport()
	gw, err := gateway.New(cfg.Gateway, &http.Client{Transport: transport}, log, m)
	require.NoError(t, err)

	hub := websocket.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	ruleService := service.NewRuleService(gw, nil, log)
	triggerService := service.NewTriggerService(gw, service.TriggerConfig{
		Concurrency: cfg.Trigger.Concurrency,
		Hub:         hub,
		Metrics:     m,
		Logger:      log,
	})

	srv := New(cfg, log, cookies, m)
	srv.RegisterHandlers(
		handler.NewProxyHandler(gw, cookies, log),
		handler.NewAuthHandler(gw, cookies, log),
		handler.NewConsoleHandler(ruleService, cookies, log),
		handler.NewTriggerHandler(triggerService, cookies, hub, websocket.Upgrader(nil), log),
		handler.NewPageHandler(log),
		handler.NewHealthHandler(nil, log),
	)

	return &fixture{handler: srv.Handler(), transport: transport}
}

func (f *fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestGuard_AnonymousRequests(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/alerts", "", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/api/alerter-rules", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/does-not-exist", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/login", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in")

	rec = f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 0, f.transport.GetTotalCallCount())
}

func TestLogin_SetsCookie(t *testing.T) {
	f := newFixture(t)
	f.transport.RegisterResponder(http.MethodPost, backend+"/api/auth/login",
		httpmock.NewStringResponder(200, `{"success":true,"message":"Login successful","data":{"user":{"id":1},"token":"jwt-1"}}`))

	rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "jwt-1", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_RejectedPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.transport.RegisterResponder(http.MethodPost, backend+"/api/auth/login",
		httpmock.NewStringResponder(401, `{"success":false,"message":"Invalid credentials"}`))

	rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"bad"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid credentials"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = f.do(http.MethodPost, "/api/auth/login", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/logout", "", "tok")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestProxy_RelaysStatusAndBody(t *testing.T) {
	f := newFixture(t)

	var gotQuery, gotAuth string
	f.transport.RegisterResponder(http.MethodGet, `=~^`+backend+`/api/alerter-rules`,
		func(req *http.Request) (*http.Response, error) {
			gotQuery = req.URL.RawQuery
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewStringResponse(200, `{"data":[],"count":0}`), nil
		})
	f.transport.RegisterResponder(http.MethodDelete, backend+"/api/alerter-rules/12",
		httpmock.NewStringResponder(404, `{"error":"Rule not found"}`))

	rec := f.do(http.MethodGet, "/api/alerter-rules?active=true", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"count":0}`, rec.Body.String())
	assert.Equal(t, "active=true", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)

	rec = f.do(http.MethodDelete, "/api/alerter-rules/12", "", "tok")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Rule not found"}`, rec.Body.String())
}

func TestProxy_CronAndAccounts(t *testing.T) {
	f := newFixture(t)

	var cronQuery, accountsQuery string
	f.transport.RegisterResponder(http.MethodGet, `=~^`+backend+`/api/cron/taboola/sync-campaigns`,
		func(req *http.Request) (*http.Response, error) {
			cronQuery = req.URL.RawQuery
			return httpmock.NewStringResponse(200, `{"success":true,"message":"done"}`), nil
		})
	f.transport.RegisterResponder(http.MethodGet, `=~^`+backend+`/api/accounts`,
		func(req *http.Request) (*http.Response, error) {
			accountsQuery = req.URL.RawQuery
			return httpmock.NewStringResponse(200, `{"data":["acme"]}`), nil
		})

	rec := f.do(http.MethodGet, "/api/cron/taboola/sync-campaigns?days=3&dry=1", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "days=3&dry=1", cronQuery)

	rec = f.do(http.MethodGet, "/api/accounts?platform=outbrain&junk=1", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "platform=outbrain", accountsQuery)
}

func TestProxy_TransportFailureAndBadBody(t *testing.T) {
	f := newFixture(t)
	f.transport.RegisterResponder(http.MethodPost, backend+"/api/alerter-rules",
		httpmock.NewErrorResponder(errors.New("dial tcp: connection refused")))

	rec := f.do(http.MethodPost, "/api/alerter-rules", `{"name":"x"}`, "tok")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Request failed"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/alerter-rules", `{broken`, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, f.transport.GetTotalCallCount())
}

func TestConsole_ValidateAndCreate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/console/rules/validate",
		`{"name":"X","platform":"outbrain","scope":"account","account_name":"acme","timeframe_hours":2,"condition_type":"cpa_threshold","threshold":"65"}`, "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
		Field   string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.False(t, apiErr.Success)
	assert.Equal(t, "MissingTimezone", apiErr.Code)
	assert.Equal(t, "timezone", apiErr.Field)

	f.transport.RegisterResponder(http.MethodPost, backend+"/api/alerter-rules",
		httpmock.NewStringResponder(201, `{"message":"created","rule_id":31}`))

	rec = f.do(http.MethodPost, "/api/console/rules",
		`{"name":"X","platform":"taboola","scope":"account","account_name":"acme","timeframe_hours":2,"condition_type":"cpa_threshold","threshold":"65"}`, "tok")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID       int64 `json:"id"`
			IsActive bool  `json:"is_active"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, int64(31), created.Data.ID)
	assert.True(t, created.Data.IsActive)
}

func TestConsole_ListFiltersAndToggle(t *testing.T) {
	f := newFixture(t)
	f.transport.RegisterResponder(http.MethodGet, backend+"/api/alerter-rules",
		httpmock.NewStringResponder(200, `{"data":[
			{"id":1,"name":"Keto","platform":"outbrain","scope":"account","account_name":"ketomax","timeframe_hours":2,"condition_type":"cpa_threshold","threshold":40,"timezone":"UTC","is_active":false},
			{"id":2,"name":"Other","scope":"campaign","account_name":"acme","timeframe_hours":2,"condition_type":"zero_conv_spend","threshold":40}]}`))
	f.transport.RegisterResponder(http.MethodPost, backend+"/api/alerter-rules/1/activate",
		httpmock.NewStringResponder(200, `{"message":"Rule activated"}`))

	rec := f.do(http.MethodGet, "/api/console/rules?include_inactive=true&platform=outbrain", "", "tok")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
		Data  []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Keto", list.Data[0].Name)

	rec = f.do(http.MethodPost, "/api/console/rules/1/toggle?active=true", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Rule activated"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/console/rules/1/toggle?active=maybe", "", "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsole_SchemaAndConditions(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/console/schema", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weekly_cpa_increase")

	rec = f.do(http.MethodGet, "/api/console/conditions?platform=outbrain", "", "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "weekly_cpa_increase")

	rec = f.do(http.MethodGet, "/api/console/conditions?platform=meta", "", "tok")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsole_Trigger(t *testing.T) {
	f := newFixture(t)
	f.transport.RegisterResponder(http.MethodGet, backend+"/api/cron/taboola/sync-realtime-reports-threshold",
		httpmock.NewStringResponder(200, `{"success":true,"message":"ok"}`))
	f.transport.RegisterResponder(http.MethodGet, backend+"/api/cron/outbrain/sync-realtime-reports-threshold",
		httpmock.NewErrorResponder(errors.New("timeout")))

	rec := f.do(http.MethodPost, "/api/console/trigger", "", "tok")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			Results []struct {
				Endpoint string `json:"endpoint"`
				Success  bool   `json:"success"`
				Message  string `json:"message"`
			} `json:"results"`
			AllSuccess bool `json:"all_success"`
			HasErrors  bool `json:"has_errors"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data.Results, 2)
	assert.True(t, out.Data.Results[0].Success)
	assert.False(t, out.Data.Results[1].Success)
	assert.Equal(t, "Request failed", out.Data.Results[1].Message)
	assert.False(t, out.Data.AllSuccess)
	assert.True(t, out.Data.HasErrors)
}

func TestCORSPreflightBypassesGuard(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/alerter-rules", nil)
	req.Header.Set("Origin", "http://console.test")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPublicPrefixes(t *testing.T) {
	assert.Equal(t, []string{"/login", "/api/auth/login", "/api/auth/signup", "/health", "/metrics"}, PublicPrefixes())
}
