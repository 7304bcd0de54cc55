package camunda

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YusovID/service-requests/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(config.Workflow{
		Enabled:    true,
		BaseURL:    baseURL + "/",
		ProcessKey: "request_process",
		Timeout:    timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_StartProcess(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process-definition/key/request_process/start", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"proc-1"}`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, time.Second).StartProcess(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, "42", got["businessKey"])
	vars := got["variables"].(map[string]any)
	requestID := vars["requestId"].(map[string]any)
	assert.Equal(t, float64(42), requestID["value"])
	assert.Equal(t, "Integer", requestID["type"])
}

func TestClient_StartProcess_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, time.Second).StartProcess(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClient_CompleteTask(t *testing.T) {
	var completed map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "7", r.URL.Query().Get("processInstanceBusinessKey"))
		_, _ = w.Write([]byte(`[{"id":"task-a"},{"id":"task-b"}]`))
	})
	mux.HandleFunc("/task/task-a/complete", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&completed))
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	err := newTestClient(srv.URL, time.Second).CompleteTask(context.Background(), 7, "signed")
	require.NoError(t, err)

	vars := completed["variables"].(map[string]any)
	status := vars["status"].(map[string]any)
	assert.Equal(t, "signed", status["value"])
	assert.Equal(t, "String", status["type"])
}

func TestClient_CompleteTask_NoTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/task" {
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	err := newTestClient(srv.URL, time.Second).CompleteTask(context.Background(), 7, "approved")
	assert.ErrorIs(t, err, ErrNoActiveTask)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := newTestClient(srv.URL, 50*time.Millisecond).StartProcess(context.Background(), 1)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
