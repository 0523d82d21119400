package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/auth"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/cache"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/handlers"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/repo/postgres"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/storage"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/verify"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries the process-level collaborators the router wires together.
type Deps struct {
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Cache    *cache.Store
	Uploads  *storage.UploadStore
	Verifier verify.IdentityVerifier
	Prom     *observability.Prom
	PromReg  *prometheus.Registry
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("exam-proctor"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics
	pingDB := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}
	pingCache := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Cache.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingCache)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.PromReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.PromReg, promhttp.HandlerOpts{})))
	}

	// uploaded profile pictures are public static assets
	if deps.Uploads != nil {
		r.Static("/uploads", deps.Uploads.Root())
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(deps.Pool, deps.Prom)
	examsRepo := postgres.NewExamsRepo(deps.Pool, deps.Prom)
	sessionsRepo := postgres.NewSessionsRepo(deps.Pool, deps.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(deps.Pool, deps.Prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	examsHandler := handlers.NewExamsHandler(examsRepo, deps.Cache)
	sessionsHandler := handlers.NewSessionsHandler(sessionsRepo, examsRepo, usersRepo, deps.Prom)
	usersHandler := handlers.NewUsersHandler(usersRepo, deps.Uploads, deps.Prom)
	verifyHandler := handlers.NewVerifyHandler(deps.Verifier, usersRepo, deps.Prom)

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	authGroup.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	exams := api.Group("/exams")
	exams.Use(authMw.RequireAuth(), middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	exams.POST("", authMw.RequireRole("proctor"), examsHandler.CreateExam)
	exams.GET("", examsHandler.ListExams)
	exams.GET("/:id", examsHandler.GetExamByID)

	sessions := api.Group("/sessions")
	sessions.Use(authMw.RequireAuth(), middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	sessions.POST("/start", authMw.RequireRole("student"), sessionsHandler.StartSession)
	sessions.PATCH("/:id/status", authMw.RequireRole("proctor"), sessionsHandler.UpdateStatus)
	sessions.GET("", sessionsHandler.ListSessions)

	users := api.Group("/users")
	users.Use(authMw.RequireAuth())
	users.GET("/profile", usersHandler.Profile)
	users.PATCH("/:id/verify-id", middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes), authMw.RequireRole("proctor"), usersHandler.VerifyStudentID)
	// multipart route: body cap is the upload limit, not the JSON cap
	users.POST("/profile-picture", middlewares.MaxBodyBytes(storage.MaxUploadBytes+1<<16), usersHandler.UploadProfilePicture)

	verifyGroup := api.Group("/verify")
	verifyGroup.Use(authMw.RequireAuth(), middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes), authMw.RequireRole("student"))
	verifyGroup.POST("/id", verifyHandler.SubmitID)
	verifyGroup.POST("/face", verifyHandler.MatchFace)

	return r
}
