package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/pkg/config"
)

// Serve starts the HTTP server once every other start hook has run. It must
// be the last option passed to fx.New.
var Serve = fx.Invoke(serve)

func serve(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger, shutdowner fx.Shutdowner) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("server stopping")
			return srv.Shutdown(ctx)
		},
	})
}
