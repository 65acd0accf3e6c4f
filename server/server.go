package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lixenwraith/gridpath/config"
	"github.com/lixenwraith/gridpath/navigation"
	"github.com/lixenwraith/gridpath/status"
	"github.com/lixenwraith/gridpath/store"
)

//go:embed web
var webFS embed.FS

// Recorder receives a run per answered query
type Recorder interface {
	Enqueue(store.Run)
}

// Server answers solve requests over websocket and HTTP and serves the editor page
type Server struct {
	cfg      config.ServerConfig
	cache    *navigation.RouteCache
	recorder Recorder
	opts     []navigation.Option
	log      *zap.Logger
	metrics  *status.Registry

	upgrader websocket.Upgrader
}

// NewServer wires a server; recorder may be nil
func NewServer(cfg config.ServerConfig, cache *navigation.RouteCache, recorder Recorder, log *zap.Logger, opts ...navigation.Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cache == nil {
		cache = navigation.NewRouteCache(1)
	}
	return &Server{
		cfg:      cfg,
		cache:    cache,
		recorder: recorder,
		opts:     opts,
		log:      log,
		metrics:  status.NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler routes the page, the websocket and the JSON endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	page, _ := fs.Sub(webFS, "web")
	mux.Handle("/", http.FileServer(http.FS(page)))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/solve", s.handleSolve)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(rw, "ok\n")
	})
	mux.HandleFunc("/statusz", s.handleStatus)
	return mux
}

// Metrics exposes the server counters
func (s *Server) Metrics() *status.Registry { return s.metrics }

func (s *Server) handleStatus(rw http.ResponseWriter, r *http.Request) {
	hits, misses := s.cache.Stats()
	s.metrics.Gauges.Get("cache.hits").Set(float64(hits))
	s.metrics.Gauges.Get("cache.misses").Set(float64(misses))
	s.metrics.Gauges.Get("cache.entries").Set(float64(s.cache.Len()))

	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.metrics.WriteText(rw); err != nil {
		s.log.Debug("status write", zap.Error(err))
	}
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.BindAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.cfg.BindAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.cfg.BindAddress, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// Answer solves one request; errors come back as TypeError responses
func (s *Server) Answer(req SolveRequest) RouteResponse {
	if req.Type != "" && req.Type != TypeSolve {
		return errorResponse(req.ID, fmt.Errorf("unknown message type %q", req.Type))
	}
	s.metrics.Inc("requests")
	g, err := req.grid(s.cfg.MaxCells)
	if err != nil {
		s.metrics.Inc("requests.rejected")
		return errorResponse(req.ID, err)
	}

	start := navigation.Pos(req.Start[0], req.Start[1])
	goal := navigation.Pos(req.Goal[0], req.Goal[1])

	t0 := time.Now()
	res := s.cache.Solve(g, start, goal, s.opts...)
	took := time.Since(t0)
	s.metrics.Inc("solve." + res.Status.String())
	s.metrics.Gauges.Get("solve.seconds").Add(took.Seconds())

	if s.recorder != nil {
		s.recorder.Enqueue(store.NewRun("server", req.ID, g, start, goal, res, took))
	}
	s.log.Debug("solved",
		zap.String("status", res.Status.String()),
		zap.Int("cost", res.Cost),
		zap.Int("expanded", res.Expanded),
		zap.Duration("took", took))

	resp := RouteResponse{
		Type:        TypeRoute,
		ID:          req.ID,
		Status:      res.Status.String(),
		Cost:        res.Cost,
		Expanded:    res.Expanded,
		Raw:         points(res.Raw),
		Smooth:      points(res.Smooth),
		Trace:       points(res.Smooth.Cells()),
		Fingerprint: g.Fingerprint(),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

func (s *Server) handleSolve(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req SolveRequest
	body := http.MaxBytesReader(rw, r.Body, int64(s.cfg.MaxCells)+4096)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeHTTP(rw, http.StatusBadRequest, errorResponse("", fmt.Errorf("decode: %w", err)))
		return
	}
	resp := s.Answer(req)
	status := http.StatusOK
	if resp.Type == TypeError {
		status = http.StatusBadRequest
	}
	writeHTTP(rw, status, resp)
}

func writeHTTP(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(s.cfg.MaxCells) + 4096)

	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read", zap.Error(err))
			}
			return
		}

		var (
			req  SolveRequest
			resp RouteResponse
		)
		if err := json.Unmarshal(msg, &req); err != nil {
			resp = errorResponse("", fmt.Errorf("decode: %w", err))
		} else {
			resp = s.Answer(req)
		}

		if s.cfg.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Debug("websocket write", zap.Error(err))
			return
		}
	}
}
