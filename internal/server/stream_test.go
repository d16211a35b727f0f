package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/preview"
)

func TestStreamHandler_UnknownFeed(t *testing.T) {
	s := New(Config{Feeds: preview.NewSet(), Logger: quietLogger()})

	req := httptest.NewRequest(http.MethodGet, "/api/stream/thermal", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamHandler_WritesPublishedFrames(t *testing.T) {
	feeds := preview.NewSet()
	ts := httptest.NewServer(New(Config{Feeds: feeds, Logger: quietLogger()}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream/slides", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", resp.Header.Get("Content-Type"))

	feeds.Publish(preview.Slides, []byte("JPEGDATA"))

	r := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 5 {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	assert.Equal(t, "--frame", lines[0])
	assert.Equal(t, "Content-Type: image/jpeg", lines[1])
	assert.Equal(t, "Content-Length: 8", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "JPEGDATA", lines[4])
}
