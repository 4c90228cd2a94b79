package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bnema/skiff/pkg/logger"
)

type Config struct {
	General GeneralConfig `yaml:"General"`
	Http    HttpConfig    `yaml:"Http"`
	Admin   AdminConfig   `yaml:"Admin"`
	Uploads UploadsConfig `yaml:"Uploads"`
	Share   ShareConfig   `yaml:"Share"`
	Github  GithubConfig  `yaml:"Github"`
	Build   BuildConfig   `yaml:"-"`
}

type BuildConfig struct {
	RunEnv       string `yaml:"-"` // come from env
	BuildVersion string `yaml:"-"` // come from build ldflags
	BuildCommit  string `yaml:"-"` // come from build ldflags
	BuildDate    string `yaml:"-"` // come from build ldflags
}

type GeneralConfig struct {
	StorageDir string `yaml:"storageDir"`
	LogLevel   string `yaml:"logLevel"`
}

type HttpConfig struct {
	Port      string `yaml:"port"`
	Domain    string `yaml:"domain"`
	SubDomain string `yaml:"subDomain"`
	Https     bool   `yaml:"https"`
	BaseURL   string `yaml:"baseURL"` // externally visible origin, overrides domain/port
}

type AdminConfig struct {
	Path string `yaml:"path"`
}

type UploadsConfig struct {
	Dir           string `yaml:"dir"`           // default <storageDir>/uploads
	MaxUploadSize string `yaml:"maxUploadSize"` // human-friendly, e.g. "1GB"
}

type ShareConfig struct {
	MaxExpirationHours int     `yaml:"maxExpirationHours"`
	RateLimit          float64 `yaml:"rateLimit"` // tokens per second for share creation
	RateBurst          int     `yaml:"rateBurst"`
}

type GithubConfig struct {
	ApiURL string `yaml:"apiUrl"`
}

// Default values
var (
	defaultPort          = "8080"
	defaultDomain        = "localhost"
	defaultAdminPath     = "/admin"
	defaultStorageDir    = "./data"
	defaultLogLevel      = "info"
	defaultMaxUpload     = "1GB"
	defaultMaxShareHours = 168 // one week
	defaultRateLimit     = 1.0
	defaultRateBurst     = 10
	defaultGithubApiURL  = "https://api.github.com"
)

// applyDefaultsToConfig applies default values to any fields that have zero values
// Returns true if any defaults were applied
func applyDefaultsToConfig(config *Config) bool {
	defaultsApplied := false

	if config.General.StorageDir == "" {
		config.General.StorageDir = defaultStorageDir
		logger.Debug("Applied default value for General.StorageDir", "value", defaultStorageDir)
		defaultsApplied = true
	}
	if config.General.LogLevel == "" {
		config.General.LogLevel = defaultLogLevel
		logger.Debug("Applied default value for General.LogLevel", "value", defaultLogLevel)
		defaultsApplied = true
	}
	if config.Http.Port == "" {
		config.Http.Port = defaultPort
		logger.Debug("Applied default value for Http.Port", "value", defaultPort)
		defaultsApplied = true
	}
	if config.Http.Domain == "" {
		config.Http.Domain = defaultDomain
		logger.Debug("Applied default value for Http.Domain", "value", defaultDomain)
		defaultsApplied = true
	}
	if config.Admin.Path == "" {
		config.Admin.Path = defaultAdminPath
		logger.Debug("Applied default value for Admin.Path", "value", defaultAdminPath)
		defaultsApplied = true
	}
	if config.Uploads.Dir == "" {
		config.Uploads.Dir = filepath.Join(config.General.StorageDir, "uploads")
		logger.Debug("Applied default value for Uploads.Dir", "value", config.Uploads.Dir)
		defaultsApplied = true
	}
	if config.Uploads.MaxUploadSize == "" {
		config.Uploads.MaxUploadSize = defaultMaxUpload
		logger.Debug("Applied default value for Uploads.MaxUploadSize", "value", defaultMaxUpload)
		defaultsApplied = true
	}
	if config.Share.MaxExpirationHours == 0 {
		config.Share.MaxExpirationHours = defaultMaxShareHours
		logger.Debug("Applied default value for Share.MaxExpirationHours", "value", defaultMaxShareHours)
		defaultsApplied = true
	}
	if config.Share.RateLimit == 0 {
		config.Share.RateLimit = defaultRateLimit
		defaultsApplied = true
	}
	if config.Share.RateBurst == 0 {
		config.Share.RateBurst = defaultRateBurst
		defaultsApplied = true
	}
	if config.Github.ApiURL == "" {
		config.Github.ApiURL = defaultGithubApiURL
		logger.Debug("Applied default value for Github.ApiURL", "value", defaultGithubApiURL)
		defaultsApplied = true
	}

	return defaultsApplied
}

// ConfigFilePath returns the path of the config file: $SKIFF_CONFIG if set,
// ./skiff.yml when it exists, otherwise ~/.config/skiff/skiff.yml.
func ConfigFilePath() string {
	if env := os.Getenv("SKIFF_CONFIG"); env != "" {
		return env
	}
	if fileExists("skiff.yml") {
		return "skiff.yml"
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "skiff.yml"
	}
	return filepath.Join(configDir, "skiff", "skiff.yml")
}

// LoadConfig reads the config file, fills in defaults and writes the file
// back when defaults were applied so the user sees the effective values.
func (config *Config) LoadConfig() (*Config, error) {
	path := ConfigFilePath()

	if fileExists(path) {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		logger.Debug("Loaded configuration", "path", path)
	} else {
		logger.Info("No config file found, creating one with defaults", "path", path)
	}

	if applyDefaultsToConfig(config) {
		if err := config.SaveConfig(); err != nil {
			// Not fatal: the in-memory config is complete either way
			logger.Warn("Could not persist config defaults", "path", path, "error", err)
		}
	}

	logger.GetLogger().SetLogLevel(config.General.LogLevel)

	return config, nil
}

// SaveConfig writes the current configuration to the config file.
func (config *Config) SaveConfig() error {
	path := ConfigFilePath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

func fileExists(filepath string) bool {
	_, err := os.Stat(filepath)
	return err == nil
}
