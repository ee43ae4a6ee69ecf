// Package cli provides CLI commands using Bubble Tea TUI.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/titanbrowser/capbridge/internal/cli/styles"
	"github.com/titanbrowser/capbridge/internal/config"
	"github.com/titanbrowser/capbridge/internal/domain/build"
	"github.com/titanbrowser/capbridge/internal/domain/repository"
	"github.com/titanbrowser/capbridge/internal/infrastructure/persistence/sqlite"
	"github.com/titanbrowser/capbridge/internal/logging"
	"github.com/titanbrowser/capbridge/internal/permission"
)

// App holds CLI dependencies.
type App struct {
	Config      *config.Config
	Theme       *styles.Theme
	BuildInfo   build.Info
	Permissions repository.PermissionRepository
	Gate        *permission.Gate

	db  *sql.DB
	ctx context.Context
}

// NewApp creates a new CLI application with all dependencies.
func NewApp() (*App, error) {
	const dataDirPerm = 0o755

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logLevel := cfg.Logging.Level
	if envLevel := os.Getenv("CAPBRIDGE_LOG_LEVEL"); envLevel != "" {
		logLevel = envLevel
	}
	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(logLevel),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	})
	ctx := logging.WithContext(context.Background(), logger)

	// An empty database path disables persistence; permission states then
	// live only in process memory.
	var db *sql.DB
	var permRepo repository.PermissionRepository
	if dbFile := cfg.Permissions.DatabasePath; dbFile != "" {
		if err = os.MkdirAll(filepath.Dir(dbFile), dataDirPerm); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err = sqlite.NewConnection(ctx, dbFile)
		if err != nil {
			return nil, fmt.Errorf("open permission database: %w", err)
		}
		logger.Debug().Str("db_path", dbFile).Msg("permission database connected")
		permRepo = sqlite.NewPermissionRepository(db)
	}
	gate := permission.NewGate(permission.Options{
		Store:         permRepo,
		PromptTimeout: cfg.Permissions.PromptTimeout,
	})

	return &App{
		Config:      cfg,
		Theme:       styles.NewTheme(),
		Permissions: permRepo,
		Gate:        gate,
		db:          db,
		ctx:         ctx,
	}, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}
