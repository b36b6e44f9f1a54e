package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"sportsregistration/config"
	"sportsregistration/internal/adapters/auth"
	"sportsregistration/internal/adapters/email"
	delivery "sportsregistration/internal/delivery/http"
	"sportsregistration/internal/delivery/http/controllers"
	"sportsregistration/internal/delivery/http/middleware"
	"sportsregistration/internal/domain"
	"sportsregistration/internal/metrics"
	"sportsregistration/internal/repository/postgres"
	"sportsregistration/internal/services"
)

// application is the wired service graph shared by serve and create-admin.
type application struct {
	authService         domain.AuthService
	eventService        domain.EventService
	registrationService domain.RegistrationService
	verifier            domain.TokenVerifier
}

func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.AWSInsecureSkipVerify,
		},
		ResendAPIKey: cfg.Mail.ResendAPIKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	authService := services.NewAuthService(
		userRepo,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		emailService,
		metrics.SignupRecorder{},
		logger,
		cfg.RequestTimeout,
	)
	registrationService := services.NewRegistrationService(
		eventRepo,
		userRepo,
		registrationRepo,
		metrics.RegistrationRecorder{},
		cfg.RequestTimeout,
	)

	return &application{
		authService:         authService,
		eventService:        services.NewEventService(eventRepo, registrationRepo, cfg.RequestTimeout),
		registrationService: registrationService,
		verifier:            auth.NewJWTVerifier(cfg.JWTSecret),
	}, nil
}

// handler builds the HTTP router. The returned limiter must be stopped on shutdown.
func (a *application) handler(cfg *config.Config, logger *slog.Logger) (http.Handler, *middleware.RateLimiter) {
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	return delivery.NewRouter(delivery.RouterDeps{
		Logger:                 logger,
		Verifier:               a.verifier,
		AuthController:         controllers.NewAuthController(logger, a.authService),
		EventController:        controllers.NewEventController(logger, a.eventService),
		RegistrationController: controllers.NewRegistrationController(logger, a.registrationService),
		LoginLimiter:           limiter,
		AllowedOrigins:         cfg.CORSAllowedOrigins,
	}), limiter
}
