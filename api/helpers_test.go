package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/codewith-ram/task-manager/board"
	"github.com/codewith-ram/task-manager/domain"
)

type memPersister struct {
	mu      sync.Mutex
	tasks   []domain.Task
	saves   int
	saveErr error
}

func (p *memPersister) Load(context.Context) []domain.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Task(nil), p.tasks...)
}

func (p *memPersister) Save(_ context.Context, tasks []domain.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.tasks = tasks
	p.saves++
	return nil
}

type testServer struct {
	e     *echo.Echo
	ctrl  *board.Controller
	hub   *Hub
	store *memPersister
	hook  *test.Hook
}

func newTestServer(t *testing.T, deduper Deduper) *testServer {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	p := &memPersister{}
	n := 0
	store := board.NewStore(context.Background(), p,
		board.WithLogger(logger),
		board.WithIDGenerator(func() string {
			n++
			return "t" + string(rune('0'+n))
		}),
	)
	hub := NewHub()
	ctrl := board.NewController(store, hub, RequestConfirmer{}, logger)

	e := echo.New()
	Register(e, ctrl, hub, deduper, logger)
	return &testServer{e: e, ctrl: ctrl, hub: hub, store: p, hook: hook}
}

func (s *testServer) do(method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	case []byte:
		buf.Write(v)
	default:
		data, err := sonic.Marshal(v)
		if err != nil {
			panic(err)
		}
		buf.Write(data)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func newMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return client
}

// flushRecorder is a ResponseWriter that can be read while a stream handler
// is still writing to it.
type flushRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	status int
}

func newFlushRecorder() *flushRecorder {
	return &flushRecorder{header: make(http.Header)}
}

func (r *flushRecorder) Header() http.Header { return r.header }

func (r *flushRecorder) WriteHeader(status int) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
}

func (r *flushRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *flushRecorder) Flush() {}

func (r *flushRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type failingDeduper struct{}

func (failingDeduper) Add(context.Context, string, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingDeduper) Remove(context.Context, string, string) error { return nil }

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
