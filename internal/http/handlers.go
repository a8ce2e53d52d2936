package http

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
)

// requireSession checks the session cookie. On failure it answers the
// request itself (redirect for page loads, 401 for partials) and returns
// false.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request, partial bool) bool {
	token := sessionToken(r)
	if _, err := s.sessions.Check(token); err != nil {
		if partial {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`<div class="error">Sessão expirada</div>`))
			return false
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	}
	return true
}

// handleIndex renders the dashboard page for the requested period.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireSession(w, r, false) {
		return
	}

	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	period := parsePeriod(r)
	view, err := s.dashboard.Load(ctx, period)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard load failed", "error", err, "period", period.Label())
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard_page", buildDashboardData(view)); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleOverview returns the overview partial so the page can refresh the
// numbers without a full reload.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireSession(w, r, true) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	period := parsePeriod(r)
	view, err := s.dashboard.Load(ctx, period)
	if err != nil {
		slog.ErrorContext(ctx, "Overview load failed", "error", err, "period", period.Label())
		http.Error(w, "failed to load overview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "overview", buildDashboardData(view)); err != nil {
		slog.ErrorContext(ctx, "Overview template failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type loginData struct {
	Error string
}

// handleLogin shows the gate and exchanges the shared secret for a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.templates.ExecuteTemplate(w, "login_page", loginData{}); err != nil {
			slog.ErrorContext(r.Context(), "Login template failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		session, err := s.sessions.Login(r.Form.Get("secret"))
		if err != nil {
			slog.WarnContext(r.Context(), "Login rejected", "client_ip", s.proxies.clientIP(r))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			if tmplErr := s.templates.ExecuteTemplate(w, "login_page", loginData{Error: "Senha incorreta"}); tmplErr != nil {
				slog.ErrorContext(r.Context(), "Login template failed", "error", tmplErr)
			}
			return
		}

		setSessionCookie(w, session.Token, session.ExpiresAt)
		slog.InfoContext(r.Context(), "Session opened", "expires_at", session.ExpiresAt)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.sessions.Logout(sessionToken(r))
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleCreateRecord validates the entry form and appends one record. A
// malformed amount stops the request before anything is written.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.requireSession(w, r, true) {
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	date, err := parseEntryDate(r.Form.Get("date"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Data inválida</div>`))
		return
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	amount, ok := core.ParseAmount(amountStr)
	if !ok || amountStr == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Valor inválido</div>`))
		return
	}

	tx := core.Transaction{
		Date:        date,
		Category:    sanitizeInput(r.Form.Get("category")),
		Description: sanitizeInput(r.Form.Get("description")),
		Amount:      amount,
		Kind:        core.Kind(strings.TrimSpace(r.Form.Get("kind"))),
	}
	if err := tx.Validate(); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados inválidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	period, err := periodOfDate(tx.Date)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Data inválida</div>`))
		return
	}

	ref, err := s.appender.Append(r.Context(), period, tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save record",
			"error", err,
			"period", period.Label(),
			"category", tx.Category,
			"amount_cents", tx.Amount.Cents,
			"component", "record_appender",
			"operation", "append")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao salvar o registro</div>`))
		return
	}

	slog.InfoContext(r.Context(), "Record created",
		"period", period.Label(),
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents,
		"kind", string(tx.Kind),
		"ref", ref)

	successMsg := fmt.Sprintf("Registro salvo (%s): %s %s",
		template.HTMLEscapeString(period.Label()),
		template.HTMLEscapeString(tx.Category),
		template.HTMLEscapeString(tx.Amount.Format()))

	w.Header().Set("HX-Trigger", fmt.Sprintf(`{
		"form:reset": {},
		"show-notification": {"type": "success", "message": "%s", "duration": 3000},
		"page:refresh": {}
	}`, template.JSEscapeString(successMsg)))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(""))
}
