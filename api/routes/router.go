package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aryangurung1/HellooBuddy/api/controllers"
	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/internal/auth"
	"github.com/Aryangurung1/HellooBuddy/internal/files"
	"github.com/Aryangurung1/HellooBuddy/internal/invoices"
	"github.com/Aryangurung1/HellooBuddy/internal/payments"
	"github.com/Aryangurung1/HellooBuddy/internal/subscriptions"
	"github.com/Aryangurung1/HellooBuddy/internal/terms"
	"github.com/Aryangurung1/HellooBuddy/internal/uploads"
	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/auth/session"
	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	"github.com/Aryangurung1/HellooBuddy/pkg/db"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	"github.com/Aryangurung1/HellooBuddy/pkg/metrics"
	"github.com/Aryangurung1/HellooBuddy/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessionChecker session.AccessSessionChecker,
	authService *auth.Service,
	userService *users.Service,
	uploadService *uploads.Service,
	termsService *terms.Service,
	fileService *files.Service,
	subscriptionService *subscriptions.Service,
	paymentService *payments.Service,
	invoiceService *invoices.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/terms", controllers.TermsActive(termsService, logg))
		r.Get("/users", controllers.UserDirectory(userService, logg))
		r.Get("/stats/counts", controllers.UserCounts(userService, logg))
		r.Get("/stats/growth", controllers.UserGrowth(userService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/callback", controllers.AuthCallback(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/v1/users/me", func(r chi.Router) {
			r.Get("/", controllers.CurrentUser(userService, logg))
			r.Get("/kinde", controllers.CurrentUserKinde(userService, logg))
			r.Put("/name", controllers.EditName(userService, logg))
			r.Post("/image-chunks", controllers.UploadImageChunk(uploadService, logg))
		})

		r.Route("/v1/terms", func(r chi.Router) {
			r.Get("/status", controllers.TermsStatus(termsService, logg))
			r.Post("/accept", controllers.TermsAccept(termsService, logg))
			r.Post("/reject", controllers.TermsReject(termsService, logg))
		})

		r.Route("/v1/files", func(r chi.Router) {
			r.Get("/", controllers.FileList(fileService, logg))
			r.Post("/by-key", controllers.FileByKey(fileService, logg))
			r.Get("/{fileId}/upload-status", controllers.FileUploadStatus(fileService, logg))
			r.Get("/{fileId}/messages", controllers.FileMessages(fileService, logg))
			r.Delete("/{fileId}", controllers.FileDelete(fileService, logg))
		})

		r.Route("/v1/billing", func(r chi.Router) {
			r.Get("/plan", controllers.SubscriptionPlan(subscriptionService, logg))
			r.Post("/checkout", controllers.StripeCheckout(subscriptionService, logg))
			r.Post("/esewa/confirm", controllers.EsewaConfirm(paymentService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/all", controllers.AdminUserAll(userService, logg))
			r.Route("/{userId}", func(r chi.Router) {
				r.Post("/suspend", controllers.AdminUserSuspend(userService, logg))
				r.Post("/unsuspend", controllers.AdminUserUnsuspend(userService, logg))
				r.Delete("/", controllers.AdminUserDelete(userService, logg))
				r.Put("/name", controllers.AdminUserEditName(userService, logg))
				r.Post("/reward", controllers.AdminGrantReward(userService, logg))
				r.Delete("/reward", controllers.AdminRevokeReward(userService, logg))
				r.Get("/pdfs", controllers.AdminUserPDFs(fileService, logg))
			})
		})

		r.Route("/v1/invoices", func(r chi.Router) {
			r.Get("/", controllers.AdminInvoiceList(invoiceService, logg))
			r.Get("/stats", controllers.AdminInvoiceStats(invoiceService, logg))
			r.Post("/", controllers.AdminInvoiceCreate(invoiceService, logg))
		})

		r.Route("/v1/terms", func(r chi.Router) {
			r.Get("/latest", controllers.AdminTermsLatest(termsService, logg))
			r.Post("/publish", controllers.AdminTermsPublish(termsService, logg))
		})

		r.Delete("/v1/pdfs/{fileId}", controllers.AdminDeletePDF(fileService, logg))
	})

	return r
}
