// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the per-vertical route groups.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accountHandler "trafix/internal/account/handler"
	accountModel "trafix/internal/account/models"
	holderHandler "trafix/internal/holder/handler"
	officerHandler "trafix/internal/officer/handler"
	"trafix/internal/platform/metrics"
	"trafix/internal/platform/middleware"
	ruleHandler "trafix/internal/rule/handler"
	violationHandler "trafix/internal/violation/handler"
)

const requestTimeout = 30 * time.Second

// Deps are the wired handlers and the token validator guarding protected
// routes.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Validator  middleware.TokenValidator
	Accounts   *accountHandler.Handler
	Holders    *holderHandler.Handler
	Officers   *officerHandler.Handler
	Rules      *ruleHandler.Handler
	Violations *violationHandler.Handler
}

// NewRouter builds the full route tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Accounts.RegisterPublic(r)
	})

	adminOnly := middleware.RequireRole(string(accountModel.RoleAdmin))
	staff := middleware.RequireRole(string(accountModel.RoleAdmin), string(accountModel.RoleOfficer))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

		r.Group(func(r chi.Router) {
			r.Use(staff)
			deps.Violations.Register(r)
		})
		deps.Rules.Register(r.With(staff), adminOnly)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			deps.Holders.Register(r)
			deps.Officers.Register(r)
			deps.Accounts.RegisterAdmin(r)
		})
	})

	return r
}
