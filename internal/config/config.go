package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vireo-ui/vireo/pkg/live"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vireo.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default export output directory.
	DefaultOutput = "dist"
)

// Config represents the complete vireo.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Server contains live server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Session contains per-session tuning.
	Session SessionConfig `json:"session,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Export contains static export configuration.
	Export ExportConfig `json:"export,omitempty"`

	configPath string
}

// ServerConfig configures the live server's outer surface.
type ServerConfig struct {
	// Host is the listen host.
	Host string `json:"host,omitempty"`

	// Port is the listen port.
	Port int `json:"port,omitempty"`

	// Title is the rendered page title.
	Title string `json:"title,omitempty"`

	// Lang is the page language attribute.
	Lang string `json:"lang,omitempty"`

	// MaxSessions caps concurrent sessions. Zero means unlimited.
	MaxSessions int `json:"maxSessions,omitempty"`

	// AllowedOrigins lists Origin hosts accepted during the WebSocket
	// upgrade, in addition to same-origin requests.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// SessionConfig tunes session lifetime and replay. Durations are
// strings in time.ParseDuration form ("30s", "5m").
type SessionConfig struct {
	// ResumeWindow is how long a detached session waits for a
	// reconnect before it is evicted.
	ResumeWindow string `json:"resumeWindow,omitempty"`

	// Heartbeat is the ping cadence on an attached session.
	Heartbeat string `json:"heartbeat,omitempty"`

	// HistorySize is how many patch frames are retained for reconnect
	// replay.
	HistorySize int `json:"historySize,omitempty"`

	// Checksums asks both sides to checksum their frames.
	Checksums bool `json:"checksums,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// File is an optional path that receives JSON logs alongside the
	// terminal output.
	File string `json:"file,omitempty"`
}

// ExportConfig configures static export.
type ExportConfig struct {
	// Output is the directory snapshots are written to.
	Output string `json:"output,omitempty"`
}

// New returns a configuration with all defaults applied.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  DefaultHost,
			Port:  DefaultPort,
			Title: "Vireo",
			Lang:  "en",
		},
		Session: SessionConfig{
			ResumeWindow: "5m",
			Heartbeat:    "30s",
			HistorySize:  100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Output: DefaultOutput,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// vireo.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config: no path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Title == "" {
		c.Server.Title = d.Server.Title
	}
	if c.Server.Lang == "" {
		c.Server.Lang = d.Server.Lang
	}
	if c.Session.ResumeWindow == "" {
		c.Session.ResumeWindow = d.Session.ResumeWindow
	}
	if c.Session.Heartbeat == "" {
		c.Session.Heartbeat = d.Session.Heartbeat
	}
	if c.Session.HistorySize == 0 {
		c.Session.HistorySize = d.Session.HistorySize
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Export.Output == "" {
		c.Export.Output = d.Export.Output
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Session.ResumeWindow); err != nil {
		return fmt.Errorf("config: session.resumeWindow: %w", err)
	}
	if _, err := time.ParseDuration(c.Session.Heartbeat); err != nil {
		return fmt.Errorf("config: session.heartbeat: %w", err)
	}
	if c.Session.HistorySize < 0 {
		return fmt.Errorf("config: session.historySize must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// Address returns the listen address string.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// LogLevel returns the configured level as an slog.Level.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OutputPath returns the absolute path to the export output directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Export.Output) {
		return c.Export.Output
	}
	return filepath.Join(c.Dir(), c.Export.Output)
}

// LiveConfig translates the file configuration into a live server
// configuration. Durations are assumed valid; Validate catches
// malformed ones at load time.
func (c *Config) LiveConfig() *live.Config {
	lc := live.DefaultConfig().
		WithAddress(c.Address()).
		WithTitle(c.Server.Title).
		WithMaxSessions(c.Server.MaxSessions)
	lc.Lang = c.Server.Lang

	sc := live.DefaultSessionConfig()
	if d, err := time.ParseDuration(c.Session.ResumeWindow); err == nil {
		sc.IdleTimeout = d
	}
	if d, err := time.ParseDuration(c.Session.Heartbeat); err == nil {
		sc.HeartbeatInterval = d
	}
	if c.Session.HistorySize > 0 {
		sc.HistorySize = c.Session.HistorySize
	}
	sc.Checksums = c.Session.Checksums
	lc.WithSession(sc)

	if len(c.Server.AllowedOrigins) > 0 {
		allowed := make(map[string]bool, len(c.Server.AllowedOrigins))
		for _, o := range c.Server.AllowedOrigins {
			allowed[o] = true
		}
		lc.WithCheckOrigin(func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return u.Host == r.Host || allowed[u.Host]
		})
	}
	return lc
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vireo.json, or an error if not
// found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory, walking upward to the project root.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
