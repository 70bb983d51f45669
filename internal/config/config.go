package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/media"
	"github.com/nao1215/pressgen/internal/model"
)

// Completion providers.
const (
	// ProviderOpenAI is any OpenAI-compatible chat completion API (Groq by default).
	ProviderOpenAI = "openai"

	// ProviderGemini is the Google Gemini API.
	ProviderGemini = "gemini"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pressgen"

	// DefaultTimeout bounds each CMS request.
	DefaultTimeout = 60 * time.Second

	// DefaultTopicTimeout bounds topic generation.
	DefaultTopicTimeout = 30 * time.Second

	// DefaultBodyTimeout bounds body generation.
	DefaultBodyTimeout = 90 * time.Second

	// DefaultSearchTimeout bounds the stock photo search.
	DefaultSearchTimeout = 20 * time.Second

	// DefaultDownloadTimeout bounds the image download.
	DefaultDownloadTimeout = 30 * time.Second

	// DefaultUploadTimeout bounds the media upload.
	DefaultUploadTimeout = 120 * time.Second

	// DefaultBatchSize is the number of pages upserted concurrently.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies pressgen in HTTP requests.
	DefaultUserAgent = "pressgen/1.0 (+https://github.com/nao1215/pressgen)"

	// DefaultPostStatus publishes immediately.
	DefaultPostStatus = "publish"
)

// Config holds all configuration options for pressgen.
// This struct is populated from the environment, the YAML file and CLI flags
// and passed through the application via dependency injection.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Styles are the one exception because they travel to the
// content generator as a unit.
type Config struct {
	// Provider selects the completion API: "openai" or "gemini".
	Provider string

	// LLMAPIKey authenticates against the OpenAI-compatible API (GROQ_KEY).
	LLMAPIKey string

	// LLMBaseURL is the OpenAI-compatible API root.
	LLMBaseURL string

	// LLMModel is the chat model name for the selected provider.
	// Empty uses the provider default.
	LLMModel string

	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string

	// PexelsKey authenticates the stock photo search. Optional; when empty
	// every image uses the placeholder URL.
	PexelsKey string

	// PexelsBaseURL is the stock photo API root.
	PexelsBaseURL string

	// SiteURL is the WordPress site root, without a trailing slash.
	SiteURL string

	// User is the WordPress user name.
	User string

	// AppPassword is the WordPress application password for User.
	AppPassword string

	// VerifySSL enables TLS certificate verification. Default true.
	VerifySSL bool

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// Timeout bounds each CMS request.
	Timeout time.Duration

	// TopicTimeout bounds topic generation.
	TopicTimeout time.Duration

	// BodyTimeout bounds body generation.
	BodyTimeout time.Duration

	// SearchTimeout bounds the stock photo search.
	SearchTimeout time.Duration

	// DownloadTimeout bounds the image download.
	DownloadTimeout time.Duration

	// UploadTimeout bounds the media upload.
	UploadTimeout time.Duration

	// UploadImages stores featured images in the media library. When false
	// images are linked from their source URL.
	UploadImages bool

	// Niche steers topic generation.
	Niche string

	// TitleTemplate decorates post titles; the first %s is the topic.
	TitleTemplate string

	// Tagline is shown under the heading of static pages.
	Tagline string

	// Tags are applied to every post.
	Tags []string

	// PostStatus is the WordPress status of written resources.
	PostStatus string

	// ArticleStyle shapes post bodies.
	ArticleStyle content.Style

	// PageStyle shapes static page copy.
	PageStyle content.Style

	// Pages is the static page set. Empty means DefaultPages.
	Pages []model.Job

	// BatchSize is the number of pages upserted concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// LogJSON switches the log handler to JSON.
	LogJSON bool

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// ConfigFilePath is an explicit path to the YAML file.
	ConfigFilePath string

	// EnvFilePath is the .env file to load. Empty means ".env" in the working directory.
	EnvFilePath string

	// DBDir is the directory of the run history database.
	DBDir string

	// SaveToDB records every run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, VerifySSL).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Provider:        ProviderOpenAI,
		LLMBaseURL:      content.DefaultOpenAIBaseURL,
		PexelsBaseURL:   media.DefaultPexelsBaseURL,
		VerifySSL:       true,
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultTimeout,
		TopicTimeout:    DefaultTopicTimeout,
		BodyTimeout:     DefaultBodyTimeout,
		SearchTimeout:   DefaultSearchTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		UploadTimeout:   DefaultUploadTimeout,
		UploadImages:    true,
		Niche:           "AI tools and automation",
		TitleTemplate:   "%s",
		Tagline:         "Actionable AI guides & automation recipes.",
		PostStatus:      DefaultPostStatus,
		ArticleStyle:    content.DefaultStyle(),
		PageStyle:       content.PageStyle(),
		BatchSize:       DefaultBatchSize,
		DBDir:           XDGDataDir(),
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for pressgen.
// On Linux: ~/.local/share/pressgen
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pressgen.
// On Linux: ~/.config/pressgen
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks settings that do not depend on credentials.
// It returns the first problem found.
//
// Design decision: Credentials are checked separately by RequireCredentials
// so commands that never call a remote service (history, init) work without
// a populated environment.
func (c *Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderGemini {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	for _, d := range []time.Duration{
		c.Timeout, c.TopicTimeout, c.BodyTimeout,
		c.SearchTimeout, c.DownloadTimeout, c.UploadTimeout,
	} {
		if d <= 0 {
			return ErrInvalidTimeout
		}
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if strings.Count(c.TitleTemplate, "%s") > 1 {
		return ErrInvalidTitleTemplate
	}

	if err := c.ArticleStyle.Validate(); err != nil {
		return fmt.Errorf("%w: article: %w", ErrInvalidStyle, err)
	}
	if err := c.PageStyle.Validate(); err != nil {
		return fmt.Errorf("%w: page: %w", ErrInvalidStyle, err)
	}

	if c.SiteURL != "" && !strings.HasPrefix(c.SiteURL, "http://") && !strings.HasPrefix(c.SiteURL, "https://") {
		return ErrInvalidSiteURL
	}

	return validatePages(c.Pages)
}

// RequireCredentials reports every missing credential the publishing
// commands need. It is called before any network request.
func (c *Config) RequireCredentials() error {
	var missing []string
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, EnvGeminiKey)
		}
	default:
		if c.LLMAPIKey == "" {
			missing = append(missing, EnvGroqKey)
		}
	}
	if c.SiteURL == "" {
		missing = append(missing, EnvSite)
	}
	if c.User == "" {
		missing = append(missing, EnvUser)
	}
	if c.AppPassword == "" {
		missing = append(missing, EnvAppPassword)
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// CompletionModel returns LLMModel or the provider default.
func (c *Config) CompletionModel() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	if c.Provider == ProviderGemini {
		return content.DefaultGeminiModel
	}
	return content.DefaultOpenAIModel
}
