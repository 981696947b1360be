package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamRecorder потокобезопасный ResponseWriter с CloseNotify для c.Stream
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header), closed: make(chan bool, 1)}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestStreamSendsSlotsAndRateChanges(t *testing.T) {
	env := newAPIEnv(t)
	student := token(t, "alice", model.RoleStudent, "Alice")
	teacher := token(t, testTeacher, model.RoleTeacher, "Teacher")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/slots/stream?week="+futureDay, nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+student)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.router.ServeHTTP(rec, req)
	}()

	assert.Eventually(t, func() bool {
		body := rec.String()
		return strings.Contains(body, "event:slots") && strings.Contains(body, `"formatted":"60.00"`)
	}, time.Second, 10*time.Millisecond)

	w := env.do(t, http.MethodPut, "/v1/teacher/rate", teacher, gin.H{"rate": 75})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Eventually(t, func() bool {
		return strings.Contains(rec.String(), `"formatted":"75.00"`)
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the client went away")
	}
	assert.Contains(t, rec.String(), "event:rate")
}
