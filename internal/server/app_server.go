package server

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bnema/skiff/internal/common"
	"github.com/bnema/skiff/internal/github"
	"github.com/bnema/skiff/internal/share"
	"github.com/bnema/skiff/internal/templating"
	"github.com/bnema/skiff/pkg/bytesize"
	"github.com/bnema/skiff/pkg/logger"
	"github.com/bnema/skiff/pkg/store"
)

type App struct {
	TemplateFS    fs.FS
	DBDir         string
	DBFilename    string
	DBPath        string
	Config        common.Config
	DB            *sql.DB
	Github        *github.Client
	Shares        *share.Service
	Uploads       *store.Store
	MaxUploadSize int64
	StartTime     time.Time
}

// NewServerApp assembles the server application from the loaded config.
func NewServerApp(buildConfig *common.BuildConfig) (*App, error) {
	config := &common.Config{}
	if buildConfig != nil {
		config.Build = *buildConfig
	}
	if _, err := config.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	maxUpload, err := bytesize.Parse(config.Uploads.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("invalid Uploads.maxUploadSize: %w", err)
	}

	uploads, err := store.New(config.Uploads.Dir)
	if err != nil {
		return nil, err
	}

	a := &App{
		TemplateFS:    templating.TemplateFS,
		DBDir:         config.General.StorageDir,
		DBFilename:    DBFilename,
		Config:        *config,
		Github:        github.NewClient(config.Github.ApiURL),
		Uploads:       uploads,
		MaxUploadSize: maxUpload,
		StartTime:     time.Now(),
	}

	registry := share.NewRegistry()
	a.Shares = share.NewService(registry, a.Github, a.BaseURL(), config.Share.MaxExpirationHours)

	return a, nil
}

// GetConfig returns the configuration
func (a *App) GetConfig() *common.Config {
	return &a.Config
}

// BaseURL returns the externally visible origin used in generated links.
func (a *App) BaseURL() string {
	config := a.Config
	if config.Http.BaseURL != "" {
		return config.Http.BaseURL
	}

	var scheme, port string
	if config.Http.Https {
		scheme = "https"
		port = ""
	} else {
		scheme = "http"
		port = fmt.Sprintf(":%s", config.Http.Port)
	}

	domain := config.Http.Domain
	if config.Http.SubDomain != "" {
		domain = fmt.Sprintf("%s.%s", config.Http.SubDomain, config.Http.Domain)
	}

	return fmt.Sprintf("%s://%s%s", scheme, domain, port)
}

func (a *App) IsDevEnvironment() bool {
	return a.Config.Build.RunEnv == "dev"
}

func (a *App) GetUptime() string {
	return time.Since(a.StartTime).String()
}

// GetVersionstring returns the version of the app
func (a *App) GetVersionstring() string {
	return fmt.Sprint(a.Config.Build.BuildVersion)
}

// Shutdown performs a clean shutdown of the application
func (a *App) Shutdown() error {
	logger.Info("Initiating application shutdown")

	if err := CloseDB(a); err != nil {
		logger.Error("Error during database shutdown", "error", err)
		return err
	}

	logger.Info("Application shutdown completed")
	return nil
}
