package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/normalize"
	"financas/internal/records"
	"financas/internal/records/memory"
	"financas/internal/report"
	"financas/internal/service"
)

const testSecret = "segredo-de-teste"

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	pipeline := normalize.New(normalize.DefaultOptions(), nil)
	dashboard := service.NewDashboard(store, store, pipeline, report.DefaultOptions(), service.DefaultTopN)
	sessions := auth.NewManager(auth.StaticSecretStore{Value: testSecret}, time.Hour)

	return NewServer(":0", dashboard, store, sessions, nil), store
}

func loginCookie(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()

	form := url.Values{"secret": {testSecret}}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d, want 303", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestIndexRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect target=%q, want /login", loc)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{"secret": {"errado"}}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			t.Fatal("rejected login must not set a session cookie")
		}
	}
}

func TestDashboardRendersSeededPeriod(t *testing.T) {
	srv, store := newTestServer(t)

	p, _ := core.NewPeriod(2025, time.March)
	store.Seed(p, []core.RawRow{
		{core.FieldDate: "01/03/2025", core.FieldCategory: "Salário", core.FieldDescription: "Pagamento", core.FieldAmount: "R$ 5.000,00", core.FieldKind: "Entrada"},
		{core.FieldDate: "02/03/2025", core.FieldCategory: "Alimentação", core.FieldDescription: "Mercado", core.FieldAmount: "R$ 350,00", core.FieldKind: "Saída"},
	})

	cookie := loginCookie(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?year=2025&month=3", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Março 2025", "R$ 5.000,00", "R$ 350,00", "R$ 4.650,00", "Alimentação"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard body missing %q", want)
		}
	}
}

func TestDashboardShowsEmptyStateForUnknownPeriod(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?year=1999&month=1", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Nenhum registro") {
		t.Fatal("expected empty state, got something else")
	}
}

func TestCreateRecordValidationAndSuccess(t *testing.T) {
	srv, store := newTestServer(t)
	cookie := loginCookie(t, srv)

	post := func(form url.Values) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		srv.Handler.ServeHTTP(rr, req)
		return rr
	}

	p, _ := core.NewPeriod(2025, time.April)

	// Malformed amount stops the request before any write.
	rr := post(url.Values{
		"date":        {"2025-04-10"},
		"category":    {"Transporte"},
		"description": {"Ônibus"},
		"amount":      {"abc"},
		"kind":        {"Saída"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed amount status=%d, want 422", rr.Code)
	}
	if _, err := store.Rows(context.Background(), p); !errors.Is(err, records.ErrPeriodNotFound) {
		t.Fatal("rejected record must not create the period")
	}

	// Unknown kind is rejected up front.
	rr = post(url.Values{
		"date":        {"2025-04-10"},
		"category":    {"Transporte"},
		"description": {"Ônibus"},
		"amount":      {"4,50"},
		"kind":        {"Transferência"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown kind status=%d, want 422", rr.Code)
	}

	// Success lands in the period derived from the record date.
	rr = post(url.Values{
		"date":        {"2025-04-10"},
		"category":    {"Transporte"},
		"description": {"Ônibus"},
		"amount":      {"4,50"},
		"kind":        {"Saída"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d, want 200: %s", rr.Code, rr.Body.String())
	}

	rows, err := store.Rows(context.Background(), p)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows=%d, want 1", len(rows))
	}
}

func TestCreateRecordRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{
		"date":     {"2025-04-10"},
		"category": {"Transporte"},
		"amount":   {"4,50"},
		"kind":     {"Saída"},
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rr.Code)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d, want 303", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("post-logout status=%d, want redirect to login", rr.Code)
	}
}

func TestOverviewPartial(t *testing.T) {
	srv, store := newTestServer(t)

	p, _ := core.NewPeriod(2025, time.May)
	store.Seed(p, []core.RawRow{
		{core.FieldDate: "05/05/2025", core.FieldCategory: "Contas", core.FieldDescription: "Luz", core.FieldAmount: "R$ 120,00", core.FieldKind: "Saída"},
	})

	// No session gets a 401, not a redirect, so htmx can react.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/overview?year=2025&month=5", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated partial status=%d, want 401", rr.Code)
	}

	cookie := loginCookie(t, srv)
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ui/overview?year=2025&month=5", nil)
	req.AddCookie(cookie)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("partial status=%d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "R$ 120,00") {
		t.Fatal("partial missing formatted amount")
	}
}
