package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/auth"
	"docextract-backend/internal/documents"
	"docextract-backend/internal/extract"
	"docextract-backend/internal/extraction"
	"docextract-backend/internal/fetch"
	"docextract-backend/internal/notify"
	"docextract-backend/internal/services/health"
	"docextract-backend/internal/shared/config"
	sharedauth "docextract-backend/internal/shared/auth"
	"docextract-backend/internal/shared/server"
	"docextract-backend/internal/shared/server/middleware"
	"docextract-backend/internal/shared/storage/db"
	"docextract-backend/internal/shared/storage/object"
	localstore "docextract-backend/internal/shared/storage/object/local"
	s3store "docextract-backend/internal/shared/storage/object/s3"
	"docextract-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Archive           object.ObjectStore
	Signer            *sharedauth.Signer
	Registry          *extract.Registry
	Notifier          notify.Notifier
	UsersService      *users.Service
	DocumentsService  *documents.Service
	ExtractionService *extraction.Service
	AuthService       *auth.Service
}

// Build prepares every dependency from cfg and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, db.Close(sqlDB))
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return nil, errors.Join(err, db.Close(sqlDB))
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.JWTSubject, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("token signer: %w", err), db.Close(sqlDB))
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Archive:  archive,
		Signer:   signer,
		Notifier: notifier,
		Registry: extract.NewRegistry(extract.WithTimeout(cfg.DecodeTimeout)),
	}
	if !app.Registry.Available(extract.FormatDOC) {
		log.Printf("bootstrap: no antiword or catdoc on PATH; .doc files will fail to decode")
	}

	buildServices(app)
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return db.Close(a.DB)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildNotifier(cfg config.Config) (notify.Notifier, error) {
	if strings.TrimSpace(cfg.SMTPServer) == "" {
		log.Printf("bootstrap: SMTP_SERVER empty; notifications are logged only")
		return notify.LogNotifier{}, nil
	}
	n, err := notify.NewSMTP(notify.SMTPConfig{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFromEmail,
		UseTLS:   cfg.SMTPUseTLS,
		Timeout:  cfg.NotifyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp notifier: %w", err)
	}
	return n, nil
}

func buildServices(app *App) {
	var userRepo users.Repo
	var docRepo documents.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
	}

	cfg := app.Config
	app.UsersService = users.NewService(userRepo)
	app.DocumentsService = documents.NewService(docRepo)
	app.AuthService = auth.NewService(app.UsersService, app.Signer)
	app.ExtractionService = &extraction.Service{
		Fetcher:        fetch.New(fetch.WithTimeout(cfg.FetchTimeout), fetch.WithMaxBytes(cfg.FetchMaxBytes)),
		Decoder:        app.Registry,
		Documents:      app.DocumentsService,
		Notifier:       app.Notifier,
		Archive:        app.Archive,
		StagingDir:     cfg.StagingDir,
		Concurrency:    cfg.ExtractConcurrency,
		NotifyRequired: cfg.NotifyRequired,
		NotifyTimeout:  cfg.NotifyTimeout,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Authenticator:     app.Signer,
		UsersService:      app.UsersService,
		AuthHandler:       auth.NewHandler(app.AuthService),
		UsersHandler:      users.NewHandler(app.UsersService),
		DocumentsHandler:  documents.NewHandler(app.DocumentsService),
		ExtractionHandler: extraction.NewHandler(app.ExtractionService),
		RateLimiter:       middleware.NewRateLimiter(nil),
		Health:            health.NewService(pinger(app.DB), app.Registry.Available(extract.FormatDOC)),
	})
}

// pinger returns a nil interface for a nil db.
func pinger(db *sql.DB) health.Pinger {
	if db == nil {
		return nil
	}
	return db
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
