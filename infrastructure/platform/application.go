// Package platform holds the process-level application handle that the
// composition root hands to leaf services.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"template-backend/infrastructure/config"
)

// Application describes the running process.
type Application struct {
	Name      string
	Version   string
	DataDir   string
	StartedAt time.Time
}

// NewApplication creates the application handle and makes sure the data
// directory exists.
func NewApplication(cfg *config.Config) (*Application, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", cfg.DataDir, err)
	}

	return &Application{
		Name:      cfg.AppName,
		Version:   cfg.AppVersion,
		DataDir:   cfg.DataDir,
		StartedAt: time.Now(),
	}, nil
}

// PreferencesPath is the default preferences file for this application.
func (a *Application) PreferencesPath() string {
	return filepath.Join(a.DataDir, a.Name+"_preferences.yaml")
}

// Uptime returns the time since the handle was created.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.StartedAt)
}
