// Package bootstrap assembles the binaries with fx. Core carries the ambient
// stack shared by every backend; each backend contributes its own option.
package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/pkg/config"
	"github.com/noah-isme/coursehub-api/pkg/database"
	"github.com/noah-isme/coursehub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursehub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursehub-api/pkg/middleware/requestid"
)

// App describes one binary: its name (also the default database name), the
// schema it owns and the swagger instance it serves.
type App struct {
	Name   string
	Schema database.Schema
	Docs   string
}

// Core provides configuration, logging, the database handle, metrics,
// validation and the HTTP engine with observability routes.
func Core(app App) fx.Option {
	return fx.Options(
		fx.Supply(app),
		fx.Provide(
			func(a App) (*config.Config, error) { return config.Load(a.Name) },
			newLogger,
			newDatabase,
			service.NewMetricsService,
			func() *validator.Validate { return validator.New() },
			newEngine,
			APIGroup,
			func(metrics *service.MetricsService, db *sqlx.DB) *handler.MetricsHandler {
				return handler.NewMetricsHandler(metrics, db)
			},
		),
		fx.WithLogger(logger.FxEvents),
		fx.Invoke(migrate, mountObservability),
	)
}

// APIGroup returns the router group all backend routes hang from.
func APIGroup(engine *gin.Engine, cfg *config.Config) *gin.RouterGroup {
	return engine.Group(cfg.APIPrefix)
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		_ = l.Sync()
		return nil
	}})
	return l, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("database connected", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})
	return db, nil
}

func newEngine(cfg *config.Config, log *zap.Logger, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	return r
}

func migrate(lc fx.Lifecycle, app App, cfg *config.Config, db *sqlx.DB, log *zap.Logger) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
		if err := database.EnsureSchema(ctx, db, app.Schema); err != nil {
			return err
		}
		log.Info("schema ensured", zap.String("schema", app.Schema.Name), zap.Int("statements", len(app.Schema.Statements)))
		return nil
	}})
}

func mountObservability(engine *gin.Engine, cfg *config.Config, app App, h *handler.MetricsHandler) {
	handler.RegisterObservability(engine, h)
	if cfg.Env != config.EnvProduction && app.Docs != "" {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(app.Docs)))
	}
}
