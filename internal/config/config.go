package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Report output formats accepted by the --format flag.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Default configuration values.
const (
	// DefaultFormat is the report format when --format is not given.
	// HTML is the product's primary artifact: a single self-contained
	// page that opens in any browser without a toolchain.
	DefaultFormat = FormatHTML

	// DefaultServeAddr binds the development server to loopback only.
	// The server re-renders unreviewed documents on request, so it must
	// never listen on a routable interface by default.
	DefaultServeAddr = "127.0.0.1:8417"

	// DefaultUnsafeTimeout bounds one unsafeJs script evaluation. Five
	// seconds is generous for report expressions while keeping a runaway
	// script from hanging a render.
	DefaultUnsafeTimeout = 5 * time.Second

	// DefaultHistoryLimit is the number of past renders the history
	// command lists when --limit is not given.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "chartbook"
)

// Config holds all rendering options for chartbook.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., RenderConfig, ServeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// DocumentPath is the report document to load: a raw JSON document or
	// an HTML page with the embedded payload script.
	DocumentPath string

	// Format selects the report output: html, markdown or json.
	Format string

	// OutputPath is the report destination. When empty, render derives
	// a name from the document path and the format's extension.
	OutputPath string

	// Pretty indent-formats JSON output. Only meaningful with FormatJSON.
	Pretty bool

	// Unsafe allows unsafeJs template values to execute for this run,
	// regardless of the document's trust entry in the config file.
	// Untrusted documents render those values as empty strings with a
	// diagnostic.
	Unsafe bool

	// Now pins the rendering clock, so due-date classification and any
	// other time-derived output are reproducible. The zero value means
	// the wall clock, read once per render.
	Now time.Time

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .chartbook in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Documents holds per-document settings loaded from the config file.
	// This is populated by LoadConfigFile and consulted for trust and
	// extra props.
	Documents *File

	// NoHistory skips recording the render in the history database.
	NoHistory bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/chartbook on Linux).
	DBDir string

	// HistoryLimit caps how many renders the history command lists.
	HistoryLimit int

	// ServeAddr is the listen address for the development server.
	ServeAddr string

	// Concurrency bounds parallel dataset normalization and page
	// derivation. Zero means one worker per CPU.
	Concurrency int

	// UnsafeTimeout bounds a single unsafeJs evaluation.
	UnsafeTimeout time.Duration
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., format, timeouts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Format:        DefaultFormat,
		ServeAddr:     DefaultServeAddr,
		UnsafeTimeout: DefaultUnsafeTimeout,
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// DocumentConfig returns the settings for the given document path, merged
// with the config file defaults. A missing config file yields the zero
// entry.
func (c *Config) DocumentConfig(path string) DocumentConfig {
	if c.Documents == nil {
		return DocumentConfig{}
	}
	return c.Documents.GetDocumentConfig(path)
}

// AllowUnsafe reports whether unsafeJs template values may execute for
// the given document: either the --unsafe flag or the document's trust
// entry grants it.
func (c *Config) AllowUnsafe(path string) bool {
	return c.Unsafe || c.DocumentConfig(path).AllowUnsafe
}

// XDGDataDir returns the XDG data directory for chartbook.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/chartbook
// On macOS: ~/Library/Application Support/chartbook
// On Windows: %LOCALAPPDATA%\chartbook
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for chartbook.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/chartbook
// On macOS: ~/Library/Application Support/chartbook
// On Windows: %APPDATA%\chartbook
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for chartbook.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/chartbook
// On macOS: ~/Library/Caches/chartbook
// On Windows: %LOCALAPPDATA%\chartbook\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any rendering begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a document to render
	if c.DocumentPath == "" {
		return ErrNoDocument
	}

	switch c.Format {
	case FormatHTML, FormatMarkdown, FormatJSON:
	default:
		return ErrInvalidFormat
	}

	// Concurrency zero means one worker per CPU; negative is meaningless
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	// UnsafeTimeout zero means no bound; negative is meaningless
	if c.UnsafeTimeout < 0 {
		return ErrInvalidUnsafeTimeout
	}

	if c.HistoryLimit < 0 {
		return ErrInvalidHistoryLimit
	}

	return nil
}
