package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hillman/internal/audit"
	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database"
	auditrepo "github.com/mrlokans/hillman/internal/database/audit"
	http_controllers "github.com/mrlokans/hillman/internal/http"
	"github.com/mrlokans/hillman/internal/reading"
	"github.com/mrlokans/hillman/internal/scheduler"
	"github.com/mrlokans/hillman/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work is stopped after the last request has been answered.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Hillman v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	log.Printf("Database driver: %s", db.Driver)

	auditor := audit.NewService(auditrepo.NewRepository(db.DB))

	authService := auth.NewService(db.DB, cfg.Auth)
	created, err := authService.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("Failed to seed the admin account: %v", err)
	}
	if created {
		log.Printf("Created admin account %q", cfg.Admin.Username)
		if cfg.Admin.Password == config.DefaultAdminPassword {
			log.Printf("WARNING: the admin account uses the default password. Set ADMIN_PASSWORD to change it.")
		}
	}

	sessionManager, err := auth.NewSessionManager(db, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	authMiddleware := auth.NewMiddleware(authService, sessionManager)
	authController := auth.NewAuthController(authService, sessionManager, cfg.UI.TemplatesPath, cfg.Auth, auditor)

	csrfSecret, err := csrfSecretFrom(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	// Task queue for maintenance jobs
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditor))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var queue scheduler.TaskQueue
	if taskClient != nil {
		queue = scheduler.ClientQueue(taskClient)
	}
	cleanup := scheduler.NewAuditCleanupScheduler(auditor, queue, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := cleanup.Start(schedCtx); err != nil {
		log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Reading:        reading.NewService(db.DB, cfg.Reading),
		BulkLoader:     bulkload.NewLoader(db.DB, authService.HashPassword, cfg.BulkLoad.DefaultPassword),
		Auditor:        auditor,
		AuthService:    authService,
		AuthController: authController,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		AuditCleanup:   cleanup,
		BulkLoad:       cfg.BulkLoad,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authController.Stop()
		auditor.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// csrfSecretFrom decodes a hex session secret, uses any other value as raw
// bytes, and generates a fresh secret when none is configured.
func csrfSecretFrom(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}
