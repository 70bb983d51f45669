package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pressgen.yaml"

// DefaultEnvFile is the dotenv file loaded from the working directory.
const DefaultEnvFile = ".env"

// Environment variables.
const (
	EnvGroqKey     = "GROQ_KEY"
	EnvLLMKey      = "LLM_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvPexelsKey   = "PEXELS_KEY"
	EnvSite        = "WP_SITE"
	EnvUser        = "WP_USER"
	EnvAppPassword = "WP_APP_PASS"
	EnvVerifySSL   = "VERIFY_SSL"
	EnvTimeout     = "TIMEOUT"
	EnvProxy       = "HTTP_PROXY_SOCKS5"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// StyleFile is the YAML form of a content style. Zero fields keep the default.
type StyleFile struct {
	Paragraphs  int      `yaml:"paragraphs,omitempty"`
	Words       int      `yaml:"words,omitempty"`
	Tone        string   `yaml:"tone,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// apply overlays the set fields of s onto base.
func (s StyleFile) apply(base content.Style) (content.Style, error) {
	if s.Paragraphs != 0 {
		base.ParagraphCount = s.Paragraphs
	}
	if s.Words != 0 {
		base.WordsPerParagraph = s.Words
	}
	if s.MaxTokens != 0 {
		base.MaxTokens = s.MaxTokens
	}
	if s.Temperature != nil {
		base.Temperature = *s.Temperature
	}
	if s.Tone != "" {
		tone, err := content.ParseTone(s.Tone)
		if err != nil {
			return base, fmt.Errorf("%w: %w", ErrInvalidStyle, err)
		}
		base.Tone = tone
	}
	return base, nil
}

// File represents the structure of the .pressgen.yaml configuration file.
// Secrets are deliberately absent; they come from the environment.
type File struct {
	// Provider selects the completion API.
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the OpenAI-compatible API root.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Site is the WordPress site root.
	Site string `yaml:"site,omitempty"`

	// Niche steers topic generation.
	Niche string `yaml:"niche,omitempty"`

	// TitleTemplate decorates post titles.
	TitleTemplate string `yaml:"titleTemplate,omitempty"`

	// Tagline is shown on static pages.
	Tagline string `yaml:"tagline,omitempty"`

	// Tags are applied to every post.
	Tags []string `yaml:"tags,omitempty"`

	// Status is the WordPress status of written resources.
	Status string `yaml:"status,omitempty"`

	// UploadImages stores featured images in the media library.
	UploadImages *bool `yaml:"uploadImages,omitempty"`

	// BatchSize is the number of pages upserted concurrently.
	BatchSize int `yaml:"batchSize,omitempty"`

	// Timeouts override the per-call limits.
	Timeouts TimeoutsFile `yaml:"timeouts,omitempty"`

	// Style overrides the article and page styles.
	Style struct {
		Article StyleFile `yaml:"article,omitempty"`
		Page    StyleFile `yaml:"page,omitempty"`
	} `yaml:"style,omitempty"`

	// Pages is the static page set.
	Pages []model.Job `yaml:"pages,omitempty"`
}

// TimeoutsFile holds per-call timeouts, written as Go durations ("30s").
type TimeoutsFile struct {
	CMS      time.Duration `yaml:"cms,omitempty"`
	Topic    time.Duration `yaml:"topic,omitempty"`
	Body     time.Duration `yaml:"body,omitempty"`
	Search   time.Duration `yaml:"search,omitempty"`
	Download time.Duration `yaml:"download,omitempty"`
	Upload   time.Duration `yaml:"upload,omitempty"`
}

// LoadConfigFile loads the YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pressgen.yaml in the current directory
// 3. Look for .pressgen.yaml in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadEnvFile loads a dotenv file into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvGroqKey); v != "" {
		c.LLMAPIKey = v
	} else if v := getenv(EnvLLMKey); v != "" {
		c.LLMAPIKey = v
	}
	if v := getenv(EnvGeminiKey); v != "" {
		c.GeminiAPIKey = v
	}
	if v := getenv(EnvPexelsKey); v != "" {
		c.PexelsKey = v
	}
	if v := getenv(EnvSite); v != "" {
		c.SiteURL = strings.TrimRight(v, "/")
	}
	if v := getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := getenv(EnvAppPassword); v != "" {
		c.AppPassword = v
	}
	if v := getenv(EnvProxy); v != "" {
		c.ProxyAddress = v
	}

	if v := getenv(EnvVerifySSL); v != "" {
		verify, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvVerifySSL, v)
		}
		c.VerifySSL = verify
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvTimeout, v)
		}
		c.Timeout = d
	}
	return nil
}

// ApplyFile overlays the set fields of f onto c.
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}
	setString(&c.Provider, f.Provider)
	setString(&c.LLMModel, f.Model)
	setString(&c.LLMBaseURL, f.BaseURL)
	setString(&c.SiteURL, strings.TrimRight(f.Site, "/"))
	setString(&c.Niche, f.Niche)
	setString(&c.TitleTemplate, f.TitleTemplate)
	setString(&c.Tagline, f.Tagline)
	setString(&c.PostStatus, f.Status)

	if len(f.Tags) > 0 {
		c.Tags = f.Tags
	}
	if f.UploadImages != nil {
		c.UploadImages = *f.UploadImages
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}

	setDuration(&c.Timeout, f.Timeouts.CMS)
	setDuration(&c.TopicTimeout, f.Timeouts.Topic)
	setDuration(&c.BodyTimeout, f.Timeouts.Body)
	setDuration(&c.SearchTimeout, f.Timeouts.Search)
	setDuration(&c.DownloadTimeout, f.Timeouts.Download)
	setDuration(&c.UploadTimeout, f.Timeouts.Upload)

	var err error
	if c.ArticleStyle, err = f.Style.Article.apply(c.ArticleStyle); err != nil {
		return err
	}
	if c.PageStyle, err = f.Style.Page.apply(c.PageStyle); err != nil {
		return err
	}

	if len(f.Pages) > 0 {
		c.Pages = f.Pages
	}
	return nil
}

// Load builds a Config from defaults, the dotenv file, the environment and
// the YAML file. An explicitly named YAML file must exist.
func Load(envFile, configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath
	cfg.EnvFilePath = envFile

	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return cfg, nil
	}
	f, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(f); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

// parseSeconds accepts a whole number of seconds or a Go duration.
func parseSeconds(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
