// Package config provides configuration management for the document
// translator.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name.
	DefaultConfigFileName = "doc-translator-config.json"
	// EnvOpenAIAPIKey is the environment variable for the OpenAI API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvAnthropicAPIKey is the environment variable for the Anthropic API key.
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	// EnvGeminiAPIKey is the environment variable for the Gemini API key.
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable for an OpenAI-compatible base URL.
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"

	// DefaultProvider is the default translation backend.
	DefaultProvider = "openai"
	// DefaultOpenAIModel is the default OpenAI model.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultAnthropicModel is the default Anthropic model.
	DefaultAnthropicModel = "claude-haiku-4-5"
	// DefaultGeminiModel is the default Gemini model.
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultSourceLang and DefaultTargetLang are BCP 47 tags.
	DefaultSourceLang = "pt-BR"
	DefaultTargetLang = "en-US"
	// DefaultBatchMaxItems bounds how many items go into one request.
	DefaultBatchMaxItems = 60
	// DefaultBatchMaxChars bounds the total text size of one request.
	DefaultBatchMaxChars = 18000
	// DefaultConcurrency is how many batches are in flight at once.
	DefaultConcurrency = 3
	// DefaultOutputSuffix is appended to translated file names.
	DefaultOutputSuffix = " — EN"
)

// Manager owns the configuration file and resolves effective values
// (file value, then environment, then default).
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager for the given config path. An empty path
// uses ~/.config/doc-translator/doc-translator-config.json.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "doc-translator", DefaultConfigFileName)
	}

	logger.Debug("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

func defaultConfig() *types.Config {
	return &types.Config{
		Provider:       DefaultProvider,
		OpenAIModel:    DefaultOpenAIModel,
		AnthropicModel: DefaultAnthropicModel,
		GeminiModel:    DefaultGeminiModel,
		SourceLang:     DefaultSourceLang,
		TargetLang:     DefaultTargetLang,
		BatchMaxItems:  DefaultBatchMaxItems,
		BatchMaxChars:  DefaultBatchMaxChars,
		Concurrency:    DefaultConcurrency,
		OutputSuffix:   DefaultOutputSuffix,
		CacheEnabled:   true,
	}
}

// Load reads the config file. A missing file means defaults; an unreadable
// or malformed file is logged and replaced by defaults rather than
// aborting. Empty fields get their default values afterwards.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		cfg := &types.Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded",
				logger.String("path", m.configPath),
				logger.String("provider", cfg.Provider),
				logger.String("source", cfg.SourceLang),
				logger.String("target", cfg.TargetLang))
			m.config = cfg
		}
	}

	if m.config.Provider == "" {
		m.config.Provider = DefaultProvider
	}
	if m.config.OpenAIModel == "" {
		m.config.OpenAIModel = DefaultOpenAIModel
	}
	if m.config.AnthropicModel == "" {
		m.config.AnthropicModel = DefaultAnthropicModel
	}
	if m.config.GeminiModel == "" {
		m.config.GeminiModel = DefaultGeminiModel
	}
	if m.config.SourceLang == "" {
		m.config.SourceLang = DefaultSourceLang
	}
	if m.config.TargetLang == "" {
		m.config.TargetLang = DefaultTargetLang
	}
	if m.config.BatchMaxItems <= 0 {
		m.config.BatchMaxItems = DefaultBatchMaxItems
	}
	if m.config.BatchMaxChars <= 0 {
		m.config.BatchMaxChars = DefaultBatchMaxChars
	}
	if m.config.Concurrency <= 0 {
		m.config.Concurrency = DefaultConcurrency
	}
	if m.config.OutputSuffix == "" {
		m.config.OutputSuffix = DefaultOutputSuffix
	}

	return nil
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// 0600: the file may hold API keys.
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Config returns the current configuration.
func (m *Manager) Config() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig replaces the configuration.
func (m *Manager) SetConfig(cfg *types.Config) {
	m.config = cfg
}

// ConfigPath returns the backing file path.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// APIKey resolves the API key for the given provider, preferring the config
// file value over the provider's environment variable.
func (m *Manager) APIKey(provider string) string {
	if m.config != nil {
		switch provider {
		case "anthropic":
			if m.config.AnthropicAPIKey != "" {
				return m.config.AnthropicAPIKey
			}
		case "gemini":
			if m.config.GeminiAPIKey != "" {
				return m.config.GeminiAPIKey
			}
		default:
			if m.config.OpenAIAPIKey != "" {
				return m.config.OpenAIAPIKey
			}
		}
	}
	switch provider {
	case "anthropic":
		return os.Getenv(EnvAnthropicAPIKey)
	case "gemini":
		return os.Getenv(EnvGeminiAPIKey)
	default:
		return os.Getenv(EnvOpenAIAPIKey)
	}
}

// Model resolves the model for the given provider.
func (m *Manager) Model(provider string) string {
	if m.config != nil {
		switch provider {
		case "anthropic":
			if m.config.AnthropicModel != "" {
				return m.config.AnthropicModel
			}
		case "gemini":
			if m.config.GeminiModel != "" {
				return m.config.GeminiModel
			}
		default:
			if m.config.OpenAIModel != "" {
				return m.config.OpenAIModel
			}
		}
	}
	switch provider {
	case "anthropic":
		return DefaultAnthropicModel
	case "gemini":
		return DefaultGeminiModel
	default:
		return DefaultOpenAIModel
	}
}

// BaseURL resolves the OpenAI-compatible base URL: config file first, then
// the environment. Empty means the provider's own endpoint.
func (m *Manager) BaseURL() string {
	if m.config != nil && m.config.OpenAIBaseURL != "" {
		return m.config.OpenAIBaseURL
	}
	return os.Getenv(EnvOpenAIBaseURL)
}

// Provider returns the configured backend name.
func (m *Manager) Provider() string {
	if m.config != nil && m.config.Provider != "" {
		return m.config.Provider
	}
	return DefaultProvider
}

// Concurrency returns the configured batch concurrency.
func (m *Manager) Concurrency() int {
	if m.config != nil && m.config.Concurrency > 0 {
		return m.config.Concurrency
	}
	return DefaultConcurrency
}

// CachePath resolves the translation cache location. Empty config value
// maps to ~/.cache/doc-translator/translations.json.
func (m *Manager) CachePath() string {
	if m.config != nil && m.config.CachePath != "" {
		return m.config.CachePath
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cacheDir, "doc-translator", "translations.json")
}
