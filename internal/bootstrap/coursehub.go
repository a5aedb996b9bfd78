package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/auth"
	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/repository"
	"github.com/noah-isme/coursehub-api/internal/seed"
	"github.com/noah-isme/coursehub-api/internal/service"
	"github.com/noah-isme/coursehub-api/pkg/cache"
	"github.com/noah-isme/coursehub-api/pkg/config"
)

// CourseHub wires the course platform: accounts, sessions, courses,
// enrollments and assignments.
var CourseHub = fx.Options(
	fx.Provide(
		repository.NewUserRepository,
		repository.NewCourseRepository,
		repository.NewAssignmentRepository,
		repository.NewEnrollmentRepository,
		repository.NewRefreshTokenRepository,
		newTokenIssuer,
		newPasswordHasher,
		newCourseCache,
		newAuthService,
		newUserService,
		newCourseService,
		newAssignmentService,
		newEnrollmentService,
		newRosterExportService,
		newTokenSweeper,
		newCourseHubRoutes,
	),
	fx.Invoke(seedAccounts, runSweeper, mountCourseHub),
)

func newTokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.TokenConfig{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
	})
}

func newPasswordHasher(cfg *config.Config) *auth.PasswordHasher {
	return auth.NewPasswordHasher(cfg.Auth.BcryptCost)
}

// newCourseCache connects to Redis when the course cache is enabled. An
// unreachable Redis degrades to a disabled cache instead of failing startup.
func newCourseCache(lc fx.Lifecycle, cfg *config.Config, metrics *service.MetricsService, log *zap.Logger) *service.CacheService {
	if !cfg.CourseCache.Enabled {
		return service.NewCacheService(nil, metrics, cfg.CourseCache.TTL, log, false)
	}

	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		log.Warn("course cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		return service.NewCacheService(nil, metrics, cfg.CourseCache.TTL, log, false)
	}

	repo := repository.NewCacheRepository(client, cfg.App)
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
	log.Info("course cache enabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Duration("ttl", cfg.CourseCache.TTL))
	return service.NewCacheService(repo, metrics, cfg.CourseCache.TTL, log, true)
}

func newAuthService(
	users *repository.UserRepository,
	ledger *repository.RefreshTokenRepository,
	tokens *auth.TokenIssuer,
	passwords *auth.PasswordHasher,
	validate *validator.Validate,
	metrics *service.MetricsService,
	log *zap.Logger,
	cfg *config.Config,
) *service.AuthService {
	return service.NewAuthService(users, ledger, tokens, passwords, validate, metrics, log, service.AuthConfig{
		EnforceLedgerExpiry: cfg.Auth.EnforceLedgerExpiry,
	})
}

func newUserService(users *repository.UserRepository, courses *repository.CourseRepository, enrollments *repository.EnrollmentRepository, passwords *auth.PasswordHasher, ledger *repository.RefreshTokenRepository, cache *service.CacheService, validate *validator.Validate, log *zap.Logger) *service.UserService {
	return service.NewUserService(users, courses, enrollments, passwords, ledger, cache, validate, log)
}

func newCourseService(courses *repository.CourseRepository, users *repository.UserRepository, enrollments *repository.EnrollmentRepository, assignments *repository.AssignmentRepository, cache *service.CacheService, cfg *config.Config, validate *validator.Validate, log *zap.Logger) *service.CourseService {
	return service.NewCourseService(courses, users, enrollments, assignments, cache, cfg.CourseCache.TTL, validate, log)
}

func newAssignmentService(assignments *repository.AssignmentRepository, courses *repository.CourseRepository, cache *service.CacheService, validate *validator.Validate, log *zap.Logger) *service.AssignmentService {
	return service.NewAssignmentService(assignments, courses, cache, validate, log)
}

func newEnrollmentService(enrollments *repository.EnrollmentRepository, courses *repository.CourseRepository, users *repository.UserRepository, cache *service.CacheService, log *zap.Logger) *service.EnrollmentService {
	return service.NewEnrollmentService(enrollments, courses, users, cache, log)
}

func newRosterExportService(courses *repository.CourseRepository, enrollments *repository.EnrollmentRepository, log *zap.Logger) *service.RosterExportService {
	return service.NewRosterExportService(courses, enrollments, log)
}

func newTokenSweeper(ledger *repository.RefreshTokenRepository, cfg *config.Config, metrics *service.MetricsService, log *zap.Logger) *service.TokenSweeper {
	return service.NewTokenSweeper(ledger, cfg.Auth.RefreshSweepInterval, metrics, log)
}

func newCourseHubRoutes(
	authSvc *service.AuthService,
	users *service.UserService,
	courses *service.CourseService,
	assignments *service.AssignmentService,
	enrollments *service.EnrollmentService,
	roster *service.RosterExportService,
) handler.CourseHubRoutes {
	return handler.CourseHubRoutes{
		Auth:        handler.NewAuthHandler(authSvc, users),
		Users:       handler.NewUserHandler(users),
		Courses:     handler.NewCourseHandler(courses, enrollments, roster),
		Assignments: handler.NewAssignmentHandler(assignments),
		Sessions:    authSvc,
	}
}

func seedAccounts(lc fx.Lifecycle, cfg *config.Config, users *repository.UserRepository, passwords *auth.PasswordHasher, log *zap.Logger) error {
	if cfg.SeedFile == "" {
		return nil
	}
	file, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
		created, err := seed.Apply(ctx, users, passwords, file, log)
		if err != nil {
			return err
		}
		log.Info("seed applied", zap.String("file", cfg.SeedFile), zap.Int("created", created))
		return nil
	}})
	return nil
}

func runSweeper(lc fx.Lifecycle, sweeper *service.TokenSweeper) {
	if !sweeper.Enabled() {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return sweeper.Start(context.Background())
		},
		OnStop: func(context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}

func mountCourseHub(api *gin.RouterGroup, routes handler.CourseHubRoutes) {
	routes.Register(api)
}
