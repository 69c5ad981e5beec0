package live

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vireo-ui/vireo/pkg/telemetry"
)

// SessionConfig bounds one session's resource use and timing.
type SessionConfig struct {
	// ReadTimeout is the idle limit on the socket read side. Heartbeats
	// keep a healthy connection inside it.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// IdleTimeout is how long a detached session waits for a reconnect
	// before the manager evicts it.
	IdleTimeout time.Duration

	// HandshakeTimeout bounds the wait for the client hello after the
	// socket upgrades.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the ping cadence on an attached session.
	HeartbeatInterval time.Duration

	// MaxMessageSize caps inbound WebSocket messages.
	MaxMessageSize int64

	// HistorySize is how many patch frames the replay history retains
	// for reconnect recovery.
	HistorySize int

	// OutboundQueue is the frame queue capacity between the task loop
	// and the socket writer. A full queue drops the connection; it
	// means the client has stopped reading.
	OutboundQueue int

	// MaxQueuedPatches caps patches held for an unreachable client.
	// Past it the queue is dropped and the client resyncs on
	// reconnect instead of replaying an unbounded backlog.
	MaxQueuedPatches int

	// Checksums asks both sides to checksum their frames.
	Checksums bool
}

// DefaultSessionConfig returns the default session tuning.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		HistorySize:       100,
		OutboundQueue:     256,
		MaxQueuedPatches:  10000,
	}
}

// Config configures a Server.
type Config struct {
	// Address is the listen address.
	Address string

	// Title is the page title for server-rendered pages.
	Title string

	// Lang is the page language attribute.
	Lang string

	// Session is the per-session tuning. Nil means defaults.
	Session *SessionConfig

	// MaxSessions caps concurrent sessions. Zero means unlimited.
	MaxSessions int

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header during upgrade. Nil uses
	// SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// CleanupInterval is how often the manager sweeps idle sessions.
	CleanupInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger receives structured logs. Nil uses slog.Default.
	Logger *slog.Logger

	// Metrics receives counters and histograms. Nil uses
	// telemetry.Default.
	Metrics *telemetry.Metrics

	// Tracer opens spans around dispatch and flush. Nil uses a tracer
	// resolved from the global provider.
	Tracer *telemetry.Tracer
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		Title:           "Vireo",
		Session:         DefaultSessionConfig(),
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		CleanupInterval: 30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// WithAddress sets the listen address.
func (c *Config) WithAddress(addr string) *Config {
	c.Address = addr
	return c
}

// WithTitle sets the rendered page title.
func (c *Config) WithTitle(title string) *Config {
	c.Title = title
	return c
}

// WithMaxSessions caps concurrent sessions.
func (c *Config) WithMaxSessions(n int) *Config {
	c.MaxSessions = n
	return c
}

// WithLogger sets the structured logger.
func (c *Config) WithLogger(logger *slog.Logger) *Config {
	c.Logger = logger
	return c
}

// WithMetrics sets the metrics collectors.
func (c *Config) WithMetrics(m *telemetry.Metrics) *Config {
	c.Metrics = m
	return c
}

// WithCheckOrigin sets the upgrade origin check.
func (c *Config) WithCheckOrigin(fn func(r *http.Request) bool) *Config {
	c.CheckOrigin = fn
	return c
}

// WithSession sets the per-session tuning.
func (c *Config) WithSession(sc *SessionConfig) *Config {
	c.Session = sc
	return c
}

// normalize fills zero fields with defaults so the rest of the package
// never branches on them.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Session == nil {
		c.Session = DefaultSessionConfig()
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = SameOriginCheck
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = telemetry.Default()
	}
	if c.Tracer == nil {
		c.Tracer = telemetry.NewTracer("")
	}
}

// SameOriginCheck accepts upgrades whose Origin host matches the
// request host. Requests without an Origin header (non-browser clients)
// are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
