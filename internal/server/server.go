// Package server exposes the dispatcher over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/types"
	"github.com/rafabd1/ceres/internal/voice"
)

// Status frames and fixed replies sent to clients.
const (
	FrameReceived  = "Received..."
	FrameExecuting = "Executing..."
	FrameFinished  = "Execution Finished !"

	HealthText = "Working Fine"

	ReplyNotHeard   = "Sorry, I didn't catch that."
	ReplyUnsure     = "I'm not sure how to respond."
	ReplyError      = "Sorry, an error occurred."
	ReplyBadAudio   = "Sorry, I couldn't read that audio."
	shutdownTimeout = 5 * time.Second
)

// Handler answers one request. source is "text" or "voice".
type Handler interface {
	Handle(ctx context.Context, source, request string) (types.Envelope, error)
}

// Server serves /health, /ws/execute and /listen.
type Server struct {
	addr        string
	sampleRate  int
	handler     Handler
	transcriber voice.Transcriber // nil disables audio frames on /listen
	upgrader    websocket.Upgrader
}

// New creates a server. transcriber may be nil.
func New(cfg *config.Config, h Handler, transcriber voice.Transcriber) *Server {
	return &Server{
		addr:        cfg.Server.Addr,
		sampleRate:  cfg.Voice.SampleRate,
		handler:     h,
		transcriber: transcriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Local clients only; the listen address is the access boundary.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/ws/execute", s.handleExecute)
	mux.HandleFunc("/listen", s.handleListen)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Connection contexts derive from ctx, so shutdown cancels in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[INFO] [Server] Listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[INFO] [Server] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthText)
}
