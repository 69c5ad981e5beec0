package live

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vireo-ui/vireo/pkg/render"
	"github.com/vireo-ui/vireo/pkg/telemetry"
)

// Server serves live sessions over HTTP: the rendered page on GET /,
// the patch socket on /_vireo/ws, and the client runtime script.
//
// Server implements http.Handler, so it can mount inside a larger
// router instead of owning the listener.
type Server struct {
	cfg      *Config
	logger   *slog.Logger
	manager  *Manager
	renderer *render.Renderer
	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server
}

// NewServer builds a server that mounts a fresh root component per
// session. A nil config uses DefaultConfig.
func NewServer(root RootFunc, cfg *Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()

	srv := &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		manager:  NewManager(root, cfg),
		renderer: render.NewRenderer(render.RendererConfig{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	srv.router = srv.routes()
	return srv
}

func (srv *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/", srv.handleIndex)
	r.Get("/_vireo/ws", srv.handleSocket)
	r.Get("/_vireo/client.js", srv.handleClientJS)
	r.Get("/healthz", srv.handleHealth)
	r.Handle("/metrics", telemetry.Handler())
	return r
}

// ServeHTTP dispatches to the server's routes.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (srv *Server) Sessions() *Manager { return srv.manager }

// handleIndex renders a fresh session's page. The session ID lands in
// the page for the client script to connect with.
func (srv *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := srv.manager.Create()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrMaxSessionsReached) {
			status = http.StatusServiceUnavailable
		}
		srv.logger.Error("session create failed", "err", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	page := render.PageData{
		Title: srv.cfg.Title,
		Lang:  srv.cfg.Lang,
		// The wrapper is what the client resolves for the root HID.
		// Child indexes in patches count the session tree only, so the
		// tree cannot share the body with page whitespace and script
		// tags.
		BodyHTML:  `<div data-vireo-root>` + sess.BodyHTML() + `</div>`,
		SessionID: sess.ID,
	}
	if err := srv.renderer.RenderPage(w, page); err != nil {
		srv.logger.Error("page render failed", "err", err, "session_id", sess.ID)
	}
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Run starts the server and blocks until a shutdown signal or a listen
// error.
func (srv *Server) Run() error {
	srv.httpServer = &http.Server{
		Addr:              srv.cfg.Address,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Info("server starting", "address", srv.cfg.Address)
		errCh <- srv.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		srv.logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	}
}

// Shutdown closes every session, then drains the HTTP server.
func (srv *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, srv.cfg.ShutdownTimeout)
	defer cancel()

	srv.manager.Close()

	if srv.httpServer != nil {
		if err := srv.httpServer.Shutdown(ctx); err != nil {
			srv.logger.Error("shutdown error", "err", err)
			return err
		}
	}

	srv.logger.Info("server shutdown complete")
	return nil
}
