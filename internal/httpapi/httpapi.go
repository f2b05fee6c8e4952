package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"rawbazaar/backend/internal/domain"
	"rawbazaar/backend/internal/metrics"
	"rawbazaar/backend/internal/service"
	"rawbazaar/backend/internal/store"
)

const maxBodyBytes = 1 << 20

type API struct {
	service         *service.Service
	sessions        *SessionManager
	metrics         *metrics.Recorder
	allowedOrigin   string
	languages       []language.Tag
	languageMatcher language.Matcher
	sessionLimiter  *attemptLimiter
}

type Option func(*API)

func WithMetrics(m *metrics.Recorder) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// WithDefaultLanguage picks the language used when a request states no
// usable Accept-Language. Only Hindi and English are served.
func WithDefaultLanguage(code string) Option {
	return func(a *API) {
		if strings.EqualFold(strings.TrimSpace(code), "en") {
			a.setLanguages(language.English, language.Hindi)
		}
	}
}

func New(svc *service.Service, sessions *SessionManager, allowedOrigin string, opts ...Option) *API {
	a := &API{
		service:        svc,
		sessions:       sessions,
		allowedOrigin:  allowedOrigin,
		sessionLimiter: newAttemptLimiter(10, time.Minute),
	}
	a.setLanguages(language.Hindi, language.English)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) setLanguages(tags ...language.Tag) {
	a.languages = tags
	a.languageMatcher = language.NewMatcher(tags)
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.withMiddleware)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w)
	})

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", a.handleSessionCreate)

		r.Group(func(r chi.Router) {
			r.Use(a.withActor)

			r.Get("/session", a.handleSessionCurrent)
			r.Get("/users", a.handleUsers)

			r.Get("/products", a.handleProductList)
			r.Post("/products", a.handleProductCreate)
			r.Get("/products/{id}", a.handleProductGet)
			r.Patch("/products/{id}", a.handleProductUpdate)
			r.Delete("/products/{id}", a.handleProductDelete)
			r.Put("/products/{id}/stock", a.handleStockUpdate)

			r.Get("/filters", a.handleFilterGet)
			r.Patch("/filters", a.handleFilterUpdate)

			r.Get("/cart", a.handleCartGet)
			r.Delete("/cart", a.handleCartClear)
			r.Post("/cart/items", a.handleCartAdd)
			r.Delete("/cart/items/{productID}", a.handleCartRemove)

			r.Get("/favorites", a.handleFavorites)
			r.Post("/favorites/{productID}/toggle", a.handleFavoriteToggle)

			r.Get("/orders", a.handleOrderList)
			r.Post("/orders", a.handleOrderPlace)
			r.Get("/orders/{id}", a.handleOrderGet)
			r.Patch("/orders/{id}/status", a.handleOrderStatus)

			r.Get("/notifications", a.handleNotificationList)
			r.Delete("/notifications", a.handleNotificationClear)
			r.Post("/notifications/{id}/read", a.handleNotificationRead)

			r.Get("/analytics/supplier", a.handleSupplierAnalytics)
			r.Get("/analytics/vendor", a.handleVendorSummary)
		})
	})

	return r
}

// withActor resolves the session token. Requests without one act as the
// configured demo identity; a token that does not verify is rejected.
func (a *API) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if authorization == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("malformed authorization header"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.sessions.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
	})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.metrics.HTTPRequest(r.Method, route, strconv.Itoa(status))
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", time.Since(startedAt)).
			Msg("request")
	})
}

// language picks Hindi or English for display fields.
func (a *API) language(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return a.languages[0]
	}
	_, idx, confidence := a.languageMatcher.Match(tags...)
	if confidence == language.No {
		return a.languages[0]
	}
	return a.languages[idx]
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

// writeDecodeError reports a body that could not be read as JSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, store.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type validationErrorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	var verr *domain.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &verr) {
		writeJSON(w, status, validationErrorResponse{Error: "validation failed", Details: verr.Fields})
		return
	}
	writeError(w, status, err)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log.
	msg := err.Error()
	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
