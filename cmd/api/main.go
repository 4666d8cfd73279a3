package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Aryangurung1/HellooBuddy/api/routes"
	internalauth "github.com/Aryangurung1/HellooBuddy/internal/auth"
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
	"github.com/Aryangurung1/HellooBuddy/pkg/kinde"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	"github.com/Aryangurung1/HellooBuddy/pkg/mailer"
	"github.com/Aryangurung1/HellooBuddy/pkg/metrics"
	"github.com/Aryangurung1/HellooBuddy/pkg/migrate"
	"github.com/Aryangurung1/HellooBuddy/pkg/redis"
	"github.com/Aryangurung1/HellooBuddy/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	kindeClient, err := kinde.NewClient(cfg.Kinde)
	if err != nil {
		logg.Error(context.Background(), "failed to create kinde client", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	invoiceRepo := invoices.NewRepository(dbClient.DB())
	fileRepo := files.NewRepository(dbClient.DB())
	termsRepo := terms.NewRepository(dbClient.DB())

	userService, err := users.NewService(users.ServiceParams{
		Repo:     userRepo,
		DB:       dbClient,
		Identity: kindeClient,
		Mailer:   smtpMailer,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(internalauth.ServiceParams{
		Users:      userRepo,
		Identity:   kindeClient,
		Sessions:   sessionManager,
		JWT:        cfg.JWT,
		AdminEmail: cfg.Admin.Email,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	uploadService, err := uploads.NewService(uploads.ServiceParams{
		Redis:  redisClient,
		Users:  userService,
		Config: cfg.Uploads,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create upload service", err)
		os.Exit(1)
	}

	termsService, err := terms.NewService(terms.ServiceParams{
		Repo:   termsRepo,
		Users:  userRepo,
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create terms service", err)
		os.Exit(1)
	}

	fileService, err := files.NewService(files.ServiceParams{
		Repo:   fileRepo,
		Users:  userRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create file service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Users:   userRepo,
		Stripe:  stripeClient,
		Billing: subscriptions.NewStripeClient(stripeClient),
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Users:    userRepo,
		Invoices: invoiceRepo,
		DB:       dbClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Repo:  invoiceRepo,
		Users: userRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			httpMetrics,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			userService,
			uploadService,
			termsService,
			fileService,
			subscriptionService,
			paymentService,
			invoiceService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
