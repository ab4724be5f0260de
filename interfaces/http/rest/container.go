package rest

import (
	"context"
	"fmt"
	"time"

	"template-backend/infrastructure/di"
	"template-backend/pkg/auth"
)

// NewRouterFromContainer wires the router to the container's services.
// Authentication is enabled when a JWT secret is configured.
func NewRouterFromContainer(c *di.Container) (*Router, error) {
	cfg := c.Config

	deps := Dependencies{
		Households:  c.HouseholdService,
		Individuals: c.IndividualService,
		Sync:        c.SyncService,
		Preferences: c.Preferences,
		Converter:   c.Converter,
		Logger:      c.Logger.Named("HTTP"),
		Health:      c.Health,
		Ready: func(ctx context.Context) error {
			return c.Database.Ping(ctx)
		},
	}

	if cfg.EnableMetrics {
		deps.Metrics = c.Metrics
	}
	if cfg.EnableCORS {
		deps.CORSOrigins = cfg.CORSAllowedOrigins
	}

	if cfg.JWTSecret != "" {
		validator, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT validator: %w", err)
		}
		deps.Validator = validator
		if cfg.RateLimitPerMinute > 0 {
			deps.RateLimiter = auth.NewRateLimiter(cfg.RateLimitPerMinute)
			stop := startCleanup(deps.RateLimiter, 5*time.Minute)
			c.AddShutdownFunction(func() error {
				stop()
				return nil
			})
		}
	}

	return NewRouter(deps), nil
}

func startCleanup(limiter *auth.RateLimiter, interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
