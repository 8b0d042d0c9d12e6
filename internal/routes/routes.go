package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ordoo/ordoo_backend/internal/auth"
	"github.com/ordoo/ordoo_backend/internal/config"
	"github.com/ordoo/ordoo_backend/internal/media"
	"github.com/ordoo/ordoo_backend/internal/middleware"
	"github.com/ordoo/ordoo_backend/internal/notification"
	"github.com/ordoo/ordoo_backend/internal/passwordreset"
	"github.com/ordoo/ordoo_backend/internal/profile"
	"github.com/ordoo/ordoo_backend/internal/token"
	"github.com/ordoo/ordoo_backend/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Storage media.ObjectStorage
	Logger  *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores: Postgres when available, in-memory in dev
	var (
		userRepo    user.Repository
		profileRepo profile.Repository
		resetRepo   passwordreset.Repository
	)
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		profileRepo = profile.NewPostgresRepository(d.DB)
		resetRepo = passwordreset.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		profileRepo = profile.NewMemoryRepository()
		resetRepo = passwordreset.NewMemoryRepository()
	}

	// Services and handlers
	tokens := token.NewManager(d.Cfg.JWTSecret, d.Cfg.SessionTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)

	authSvc := auth.NewService(d.Cfg, userRepo, profileRepo, resetRepo, tokens, notifier)
	authHandler := auth.NewHandler(authSvc)

	profileSvc := profile.NewService(userRepo, profileRepo)
	profileHandler := profile.NewHandler(profileSvc)

	storage := d.Storage
	if storage == nil {
		storage = media.NewMemoryStorage()
	}
	var chunks *media.ChunkStore
	if d.Cache != nil {
		chunks = media.NewChunkStore(d.Cache, d.Cfg.UploadChunkTTL)
	}
	mediaHandler := media.NewHandler(media.NewService(storage, chunks))

	sessionAuth := middleware.SessionAuth(tokens, userRepo)

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, sessionAuth, rateLimiter)
	RegisterUserRoutes(api, profileHandler, sessionAuth)
	RegisterUploadRoutes(api, mediaHandler, sessionAuth, d)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
