package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialProgressStream(t *testing.T, env *testEnv, jobID string) (*websocket.Conn, *http.Response) {
	t.Helper()
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	url := strings.Replace(server.URL, "http://", "ws://", 1) + "/api/v1/job/" + jobID + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, resp
	}
	t.Cleanup(func() { ws.Close() })
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	return ws, resp
}

func TestStreamCompletedJobSingleTerminalEvent(t *testing.T) {
	env := setupTestEnv(t)
	completedJob(t, env, "job-done")

	ws, _ := dialProgressStream(t, env, "job-done")
	require.NotNil(t, ws)

	var event ProgressEvent
	require.NoError(t, ws.ReadJSON(&event))
	assert.Equal(t, "completed", string(event.Status))
	assert.Equal(t, 100, event.Progress)
	require.NotNil(t, event.Outputs)

	// Exactly one event: the server closes the stream right after
	err := ws.ReadJSON(&event)
	assert.Error(t, err)
}

func TestStreamEmitsUpdatesUntilTimeout(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.initUpload(t, "video.mp4", 20, 10)
	jobID := resp["job_id"].(string)

	ws, _ := dialProgressStream(t, env, jobID)
	require.NotNil(t, ws)

	// Initial snapshot of the uploading job
	var first map[string]any
	require.NoError(t, ws.ReadJSON(&first))
	assert.Equal(t, "uploading", first["status"])
	assert.Equal(t, float64(0), first["progress"])

	// A chunk lands while the stream is open
	w := env.putChunk(jobID, 0, []byte("aaaaaaaaaa"))
	require.Equal(t, http.StatusOK, w.Code)

	lastProgress := -1.0
	sawTimeout := false
	for {
		var event map[string]any
		if err := ws.ReadJSON(&event); err != nil {
			break
		}
		if event["status"] == "timeout" {
			sawTimeout = true
			break
		}
		progress := event["progress"].(float64)
		assert.GreaterOrEqual(t, progress, lastProgress)
		lastProgress = progress
	}

	// Upload never finished, so the bounded observation window expires
	assert.True(t, sawTimeout)
	assert.Equal(t, 50.0, lastProgress)
}

func TestStreamErrorJobTerminalEvent(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.initUpload(t, "video.mp4", 10, 10)
	jobID := resp["job_id"].(string)
	env.registry.Fail(jobID, "analyzer exploded")

	ws, _ := dialProgressStream(t, env, jobID)
	require.NotNil(t, ws)

	var event ProgressEvent
	require.NoError(t, ws.ReadJSON(&event))
	assert.Equal(t, "error", string(event.Status))
	assert.Equal(t, "analyzer exploded", event.Message)

	err := ws.ReadJSON(&event)
	assert.Error(t, err)
}

func TestStreamUnknownJobRejectedBeforeUpgrade(t *testing.T) {
	env := setupTestEnv(t)

	ws, resp := dialProgressStream(t, env, "no-such-job")
	assert.Nil(t, ws)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
