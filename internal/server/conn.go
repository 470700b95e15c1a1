package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/rafabd1/ceres/internal/voice"
	"github.com/rafabd1/ceres/pkg/utils"
)

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// writeBatch writes frames back to back so concurrent requests never interleave inside a batch.
func (c *conn) writeBatch(frames ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range frames {
		if err := c.ws.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			return err
		}
	}
	return nil
}

// serveConn upgrades the request and runs handle for every incoming frame in
// its own goroutine. When the client goes away every in-flight frame's
// context is cancelled and the connection waits for them before closing.
func (s *Server) serveConn(w http.ResponseWriter, r *http.Request, name string, handle func(ctx context.Context, c *conn, messageType int, data []byte)) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] [Server] %s upgrade failed: %v", name, err)
		return
	}
	c := &conn{ws: ws}
	log.Printf("[INFO] [Server] %s client connected from %s", name, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	g, gctx := errgroup.WithContext(ctx)

	go func() {
		<-ctx.Done()
		// Unblocks ReadMessage on server shutdown.
		ws.Close()
	}()

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[WARN] [Server] %s read error: %v", name, err)
			}
			break
		}
		g.Go(func() error {
			handle(gctx, c, mt, data)
			return nil
		})
	}

	cancel()
	g.Wait()
	log.Printf("[INFO] [Server] %s client disconnected", name)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	s.serveConn(w, r, "execute", func(ctx context.Context, c *conn, mt int, data []byte) {
		if mt != websocket.TextMessage {
			return
		}
		request := string(data)
		log.Printf("[INFO] [Server] Received command: %q", utils.Truncate(request, 120))
		if err := c.writeBatch(FrameReceived, FrameExecuting); err != nil {
			return
		}

		env, err := s.handler.Handle(ctx, "text", request)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("[ERROR] [Server] Request failed: %v", err)
		}

		frames := make([]string, 0, len(env.Messages)+1)
		for _, text := range env.Texts() {
			if strings.TrimSpace(text) != "" {
				frames = append(frames, text)
			}
		}
		frames = append(frames, FrameFinished)
		if err := c.writeBatch(frames...); err != nil {
			log.Printf("[WARN] [Server] Write failed: %v", err)
		}
	})
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	s.serveConn(w, r, "listen", func(ctx context.Context, c *conn, mt int, data []byte) {
		reply := s.voiceReply(ctx, mt, data)
		if ctx.Err() != nil {
			return
		}
		if err := c.writeBatch(reply); err != nil {
			log.Printf("[WARN] [Server] Write failed: %v", err)
		}
	})
}

// voiceReply turns one utterance into exactly one reply line. Binary frames are
// little-endian PCM16; text frames carry an already transcribed utterance.
func (s *Server) voiceReply(ctx context.Context, mt int, data []byte) string {
	var text string
	switch mt {
	case websocket.BinaryMessage:
		samples, err := voice.DecodePCM16(data)
		if err != nil {
			log.Printf("[WARN] [Server] Bad audio frame (%d bytes): %v", len(data), err)
			return ReplyBadAudio
		}
		if s.transcriber == nil {
			log.Println("[WARN] [Server] Audio received but no transcriber is configured")
			return ReplyError
		}
		text, err = s.transcriber.Transcribe(ctx, voice.Normalize(samples), s.sampleRate)
		if err != nil {
			log.Printf("[ERROR] [Server] Transcription failed: %v", err)
			return ReplyError
		}
	case websocket.TextMessage:
		text = string(data)
	default:
		return ReplyError
	}

	text = strings.TrimSpace(text)
	log.Printf("[INFO] [Server] Transcribed from voice: %q", utils.Truncate(text, 120))
	if text == "" {
		return ReplyNotHeard
	}

	env, err := s.handler.Handle(ctx, "voice", text)
	if err != nil {
		log.Printf("[ERROR] [Server] Error executing voice command: %v", err)
		return ReplyError
	}
	if first := strings.TrimSpace(env.First()); first != "" {
		return env.First()
	}
	return ReplyUnsure
}
