package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// entryCategories is the fixed list offered by the entry form. Free-text
// categories still round-trip through the pipeline, the form just keeps
// input tidy.
var entryCategories = []string{
	"Alimentação",
	"Transporte",
	"Lazer",
	"Contas",
	"Salário",
	"Outros",
}

var entryKinds = []string{
	string(core.KindInflow),
	string(core.KindOutflow),
}

// parsePeriod extracts year and month from query parameters, falling back
// to the current period on missing or unusable values.
func parsePeriod(r *http.Request) core.Period {
	now := core.CurrentPeriod()
	year := now.Year
	month := int(now.Month)

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}

	p, err := core.NewPeriod(year, time.Month(month))
	if err != nil {
		return now
	}
	return p
}

// parseEntryDate accepts the HTML date input format and the display format.
func parseEntryDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02/01/2006"), nil
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return "", err
	}
	return t.Format("02/01/2006"), nil
}

// periodOfDate maps a record date onto the period whose sheet it belongs in.
func periodOfDate(date string) (core.Period, error) {
	t, err := time.Parse("02/01/2006", date)
	if err != nil {
		return core.Period{}, err
	}
	return core.NewPeriod(t.Year(), t.Month())
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// sessionToken reads the session cookie, empty when absent.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
