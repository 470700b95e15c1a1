package server

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/config"
	"github.com/rafabd1/ceres/internal/types"
)

type fakeHandler struct {
	mu       sync.Mutex
	requests []string
	sources  []string
	respond  func(ctx context.Context, request string) (types.Envelope, error)
}

func (h *fakeHandler) Handle(ctx context.Context, source, request string) (types.Envelope, error) {
	h.mu.Lock()
	h.requests = append(h.requests, request)
	h.sources = append(h.sources, source)
	h.mu.Unlock()
	if h.respond != nil {
		return h.respond(ctx, request)
	}
	return types.Success("did " + request), nil
}

type fakeTranscriber struct {
	text string
	err  error
	got  []float32
}

func (f *fakeTranscriber) Transcribe(_ context.Context, samples []float32, _ int) (string, error) {
	f.got = samples
	return f.text, f.err
}

func newTestServer(t *testing.T, h Handler, tr *fakeTranscriber) *httptest.Server {
	t.Helper()
	var s *Server
	if tr == nil {
		s = New(config.Default(), h, nil)
	} else {
		s = New(config.Default(), h, tr)
	}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial %s: %v", path, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrames(t *testing.T, ws *websocket.Conn, n int) []string {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	frames := make([]string, 0, n)
	for i := 0; i < n; i++ {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage after %v: %v", frames, err)
		}
		frames = append(frames, string(data))
	}
	return frames
}

func pcm(samples ...int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeHandler{}, nil)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != `"Working Fine"` {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
}

func TestExecuteFrames(t *testing.T) {
	h := &fakeHandler{respond: func(_ context.Context, request string) (types.Envelope, error) {
		return types.Envelope{Messages: []types.Message{
			{Text: "line one", Type: types.MessageTypeBot},
			{Text: "  ", Type: types.MessageTypeBot},
			{Text: "line two", Type: types.MessageTypeBot},
		}}, nil
	}}
	ws := dial(t, newTestServer(t, h, nil), "/ws/execute")

	if err := ws.WriteMessage(websocket.TextMessage, []byte("list files")); err != nil {
		t.Fatal(err)
	}
	got := readFrames(t, ws, 5)
	want := []string{FrameReceived, FrameExecuting, "line one", "line two", FrameFinished}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("frames = %q, want %q", got, want)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sources) != 1 || h.sources[0] != "text" {
		t.Errorf("sources = %q", h.sources)
	}
}

func TestExecuteConcurrentRequestsDoNotInterleave(t *testing.T) {
	h := &fakeHandler{respond: func(ctx context.Context, request string) (types.Envelope, error) {
		if request == "slow" {
			time.Sleep(300 * time.Millisecond)
		}
		return types.Success("done " + request), nil
	}}
	ws := dial(t, newTestServer(t, h, nil), "/ws/execute")

	ws.WriteMessage(websocket.TextMessage, []byte("slow"))
	ws.WriteMessage(websocket.TextMessage, []byte("fast"))
	frames := readFrames(t, ws, 8)

	var results []string
	for i, f := range frames {
		if strings.HasPrefix(f, "done ") {
			results = append(results, f)
			if i+1 >= len(frames) || frames[i+1] != FrameFinished {
				t.Errorf("result %q not followed by finish frame: %q", f, frames)
			}
		}
	}
	if strings.Join(results, ",") != "done fast,done slow" {
		t.Errorf("results = %v, want fast before slow", results)
	}
}

func TestExecuteCancelledOnDisconnect(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	h := &fakeHandler{respond: func(ctx context.Context, request string) (types.Envelope, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return types.Envelope{}, ctx.Err()
	}}
	ws := dial(t, newTestServer(t, h, nil), "/ws/execute")
	ws.WriteMessage(websocket.TextMessage, []byte("sleep forever"))

	<-started
	ws.Close()

	select {
	case <-cancelled:
	case <-time.After(3 * time.Second):
		t.Fatal("disconnect did not cancel the in-flight request")
	}
}

func TestListen(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		binary  bool
		tr      *fakeTranscriber
		respond func(context.Context, string) (types.Envelope, error)
		want    string
	}{
		{"transcribed", pcm(100, -100), true, &fakeTranscriber{text: " open safari "}, nil, "did open safari"},
		{"odd payload", []byte{1, 2, 3}, true, &fakeTranscriber{}, nil, ReplyBadAudio},
		{"silence", pcm(0, 0), true, &fakeTranscriber{text: "  "}, nil, ReplyNotHeard},
		{"transcriber error", pcm(1), true, &fakeTranscriber{err: errors.New("boom")}, nil, ReplyError},
		{"handler error", pcm(1), true, &fakeTranscriber{text: "x"}, func(context.Context, string) (types.Envelope, error) {
			return types.Envelope{}, errors.New("boom")
		}, ReplyError},
		{"empty envelope", pcm(1), true, &fakeTranscriber{text: "x"}, func(context.Context, string) (types.Envelope, error) {
			return types.Envelope{}, nil
		}, ReplyUnsure},
		{"text utterance", []byte("list my desktop"), false, &fakeTranscriber{}, nil, "did list my desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHandler{respond: tt.respond}
			ws := dial(t, newTestServer(t, h, tt.tr), "/listen")

			mt := websocket.TextMessage
			if tt.binary {
				mt = websocket.BinaryMessage
			}
			if err := ws.WriteMessage(mt, tt.frame); err != nil {
				t.Fatal(err)
			}
			if got := readFrames(t, ws, 1)[0]; got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListenNormalizesSamples(t *testing.T) {
	tr := &fakeTranscriber{text: "hi"}
	ws := dial(t, newTestServer(t, &fakeHandler{}, tr), "/listen")
	ws.WriteMessage(websocket.BinaryMessage, pcm(-32768, 16384))
	readFrames(t, ws, 1)

	if len(tr.got) != 2 || tr.got[0] != -1 || tr.got[1] != 0.5 {
		t.Errorf("samples = %v", tr.got)
	}
}

func TestListenWithoutTranscriber(t *testing.T) {
	ws := dial(t, newTestServer(t, &fakeHandler{}, nil), "/listen")
	ws.WriteMessage(websocket.BinaryMessage, pcm(1, 2))
	if got := readFrames(t, ws, 1)[0]; got != ReplyError {
		t.Errorf("reply = %q", got)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(config.Default(), &fakeHandler{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
