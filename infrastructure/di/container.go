// Package di is the composition root. It builds every application singleton
// once and hands them out through Container.
package di

import (
	"context"
	"fmt"
	"sync"

	"template-backend/application/ports"
	"template-backend/application/services"
	"template-backend/infrastructure/config"
	"template-backend/infrastructure/eventbus"
	"template-backend/infrastructure/persistence/database"
	"template-backend/infrastructure/platform"
	"template-backend/infrastructure/webservice"
	"template-backend/pkg/dispatch"
	"template-backend/pkg/jsonmapper"
	"template-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Application *platform.Application

	Preferences   ports.Preferences
	Notifications ports.NotificationManager
	Analytics     ports.Analytics
	EventBus      *eventbus.Bus
	ObjectMapper  *jsonmapper.Mapper
	Converter     *webservice.ConverterFactory
	Dispatchers   dispatch.ContextProvider

	Database      *database.MainDatabase
	IndividualDao ports.IndividualDao
	HouseholdDao  ports.HouseholdDao

	Metrics         *observability.Metrics
	Tracer          *observability.Tracer
	StartupReporter *observability.StartupReporter
	Subscribers     *Subscribers

	IndividualService *services.IndividualService
	HouseholdService  *services.HouseholdService
	SyncService       *services.SyncService

	mu                sync.Mutex     `wire:"-"`
	shutdownFunctions []func() error `wire:"-"`
}

// Validate ensures all critical dependencies are properly initialized.
func (c *Container) Validate() error {
	required := map[string]interface{}{
		"config":               c.Config,
		"logger":               c.Logger,
		"application":          c.Application,
		"preferences":          c.Preferences,
		"notification manager": c.Notifications,
		"analytics":            c.Analytics,
		"event bus":            c.EventBus,
		"object mapper":        c.ObjectMapper,
		"converter factory":    c.Converter,
		"context provider":     c.Dispatchers,
		"database":             c.Database,
		"individual dao":       c.IndividualDao,
		"household dao":        c.HouseholdDao,
	}
	for name, dep := range required {
		if isNil(dep) {
			return fmt.Errorf("%s not initialized", name)
		}
	}
	return nil
}

// Health reports the state of the container's components
func (c *Container) Health(ctx context.Context) map[string]string {
	health := map[string]string{
		"container": "healthy",
		"variant":   c.Config.BuildVariant,
	}

	if c.Database != nil {
		if err := c.Database.Ping(ctx); err != nil {
			health["database"] = "unreachable"
		} else {
			health["database"] = "connected"
		}
	} else {
		health["database"] = "not_connected"
	}

	health["analytics"] = fmt.Sprintf("%T", c.Analytics)
	health["notifications"] = fmt.Sprintf("%T", c.Notifications)
	return health
}

// AddShutdownFunction adds a function to be called during container shutdown.
func (c *Container) AddShutdownFunction(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// Shutdown runs the shutdown functions in reverse order
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	fns := c.shutdownFunctions
	c.shutdownFunctions = nil
	c.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Warn("Error during shutdown", zap.Error(err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	c.Logger.Info("Container shutdown completed")
	return nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case *config.Config:
		return t == nil
	case *zap.Logger:
		return t == nil
	case *platform.Application:
		return t == nil
	case *eventbus.Bus:
		return t == nil
	case *jsonmapper.Mapper:
		return t == nil
	case *webservice.ConverterFactory:
		return t == nil
	case *database.MainDatabase:
		return t == nil
	}
	return false
}
