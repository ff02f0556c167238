package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/adilbek/plantscan-api/internal/facades"
	"github.com/adilbek/plantscan-api/internal/handlers"
	"github.com/adilbek/plantscan-api/internal/jwt"
	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/middlewares"
	"github.com/adilbek/plantscan-api/internal/migrations"
	"github.com/adilbek/plantscan-api/internal/repositories"
	"github.com/adilbek/plantscan-api/internal/services"
	"github.com/adilbek/plantscan-api/internal/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Rate limiting: 100 requests per client IP over a sliding 15-minute window.
const (
	rateLimitRequests = 100
	rateLimitWindow   = 15 * time.Minute
)

// visionTimeout bounds the external classification call.
const visionTimeout = 30 * time.Second

// @title plantscan API
// @version 1.0.0
// @description Backend service for plant identification: authenticates users, classifies uploaded photos with an external vision model and stores scan history.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		uploadDir, clientURL,
		visionURL, visionKey,
		jwtSecretKey, jwtExpSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		uploadDir, clientURL,
		visionURL, visionKey,
		jwtSecretKey, jwtExpSecond,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, upload, vision and JWT configuration.
// The JWT secret has no default: its absence is a fatal configuration error.
// A missing vision API key is allowed and degrades identification to the
// fallback record.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	uploadDir, clientURL string,
	visionURL, visionKey string,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "postgres")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "plantscan")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Upload and CORS config
	uploadDir = getEnv("UPLOAD_DIR", "uploads")
	clientURL = getEnv("CLIENT_URL", "http://localhost:5173")

	// Vision endpoint config
	visionURL = getEnv("VISION_API_URL",
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent")
	visionKey = getEnv("VISION_API_KEY", "")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		err = fmt.Errorf("JWT_SECRET_KEY is required")
		return
	}
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "604800")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, migrations, storage, facades and
// HTTP server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	uploadDir, clientURL string,
	visionURL, visionKey string,
	jwtSecretKey string, jwtExpSecond int,
) error {
	startedAt := time.Now()

	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Apply schema migrations
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		logger.Log.Errorw("migrations failed", "error", err)
		return err
	}

	// Initialize upload storage
	uploads, err := storage.New(uploadDir)
	if err != nil {
		logger.Log.Errorw("failed to initialize upload storage", "error", err)
		return err
	}

	// Initialize vision facade
	if visionKey == "" {
		logger.Log.Warn("VISION_API_KEY is not set, identification will always use the fallback record")
	}
	vision := facades.NewVisionFacade(visionURL, visionKey, visionTimeout)

	// Initialize JWT service
	tokenSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(time.Duration(jwtExpSecond)*time.Second),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	scanReadRepo := repositories.NewScanReadRepository(db)
	scanWriteRepo := repositories.NewScanWriteRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokenSvc)
	scanService := services.NewScanService(vision, scanReadRepo, scanWriteRepo, uploads)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	getProfileHandler := handlers.NewGetProfileHandler(authService, middlewares.GetUserIDFromContext)
	updateProfileHandler := handlers.NewUpdateProfileHandler(authService, middlewares.GetUserIDFromContext)
	changePasswordHandler := handlers.NewChangePasswordHandler(authService, middlewares.GetUserIDFromContext)
	identifyHandler := handlers.NewIdentifyHandler(scanService, uploads, middlewares.GetUserIDFromContext)
	listScansHandler := handlers.NewListScansHandler(scanService, middlewares.GetUserIDFromContext)
	getScanHandler := handlers.NewGetScanHandler(scanService, middlewares.GetUserIDFromContext)
	deleteScanHandler := handlers.NewDeleteScanHandler(scanService, middlewares.GetUserIDFromContext)
	statsHandler := handlers.NewStatsHandler(scanService, middlewares.GetUserIDFromContext)
	healthHandler := handlers.NewHealthHandler(startedAt)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(httprate.LimitByIP(rateLimitRequests, rateLimitWindow))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Post("/api/auth/register", registerHandler)
	r.Post("/api/auth/login", loginHandler)
	r.Get("/api/health", healthHandler)

	// Uploaded images are served back at a static path
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))

	// Protected routes with JWT middleware
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(tokenSvc))
		r.Get("/api/auth/profile", getProfileHandler)
		r.Put("/api/auth/profile", updateProfileHandler)
		r.Put("/api/auth/change-password", changePasswordHandler)
		r.Post("/api/plants/identify", identifyHandler)
		r.Get("/api/plants/scans", listScansHandler)
		r.Get("/api/plants/scans/{scanID}", getScanHandler)
		r.Delete("/api/plants/scans/{scanID}", deleteScanHandler)
		r.Get("/api/plants/stats", statsHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	// Catch-all for unmatched routes
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"API endpoint not found"}`)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
