package analytics

import (
	"LinkBio-Backend/internal/repository/memory"
	"LinkBio-Backend/pkg/useragent"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testProfileID = "11111111-1111-1111-1111-111111111111"
	testLinkID    = "22222222-2222-2222-2222-222222222222"

	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func newTestRecorder(t *testing.T) (*Recorder, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	parser, err := useragent.New("", zap.NewNop())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.WorkerCount = 2
	cfg.ShutdownTimeout = 5 * time.Second
	return NewRecorder(storage, parser, zap.NewNop(), cfg), storage
}

func strptr(s string) *string { return &s }

func TestRecorder(t *testing.T) {
	t.Run("records page views and link clicks", func(t *testing.T) {
		recorder, storage := newTestRecorder(t)
		require.NoError(t, recorder.Start())

		recorder.SubmitPageView(testProfileID, EventMeta{
			UserAgent: strptr(chromeUA),
			IPAddress: strptr("203.0.113.7"),
			Referrer:  strptr("https://twitter.com/"),
			Country:   strptr("DE"),
		})
		recorder.SubmitLinkClick(testLinkID, testProfileID, EventMeta{
			UserAgent: strptr(chromeUA),
		})

		// Stop drains the queue before returning.
		require.NoError(t, recorder.Stop())

		views := storage.PageViews()
		require.Len(t, views, 1)
		assert.Equal(t, testProfileID, views[0].ProfileID)
		require.NotNil(t, views[0].IPAddress)
		assert.Equal(t, "203.0.113.7", *views[0].IPAddress)
		require.NotNil(t, views[0].Country)
		assert.Equal(t, "DE", *views[0].Country)
		require.NotNil(t, views[0].DeviceType)
		assert.Equal(t, "desktop", *views[0].DeviceType)
		require.NotNil(t, views[0].Browser)
		assert.Equal(t, "Chrome", *views[0].Browser)

		clicks := storage.LinkClicks()
		require.Len(t, clicks, 1)
		assert.Equal(t, testLinkID, clicks[0].LinkID)
		assert.Equal(t, testProfileID, clicks[0].ProfileID)
	})

	t.Run("missing metadata stays empty", func(t *testing.T) {
		recorder, storage := newTestRecorder(t)
		require.NoError(t, recorder.Start())

		recorder.SubmitPageView(testProfileID, EventMeta{})
		require.NoError(t, recorder.Stop())

		views := storage.PageViews()
		require.Len(t, views, 1)
		assert.Nil(t, views[0].UserAgent)
		assert.Nil(t, views[0].IPAddress)
		assert.Nil(t, views[0].DeviceType)
	})

	t.Run("submit before start drops the event", func(t *testing.T) {
		recorder, storage := newTestRecorder(t)

		recorder.SubmitPageView(testProfileID, EventMeta{})

		assert.Empty(t, storage.PageViews())
	})

	t.Run("double start fails", func(t *testing.T) {
		recorder, _ := newTestRecorder(t)
		require.NoError(t, recorder.Start())
		assert.Error(t, recorder.Start())
		require.NoError(t, recorder.Stop())
	})

	t.Run("stop without start fails", func(t *testing.T) {
		recorder, _ := newTestRecorder(t)
		assert.Error(t, recorder.Stop())
	})

	t.Run("stats reflect configuration", func(t *testing.T) {
		recorder, _ := newTestRecorder(t)
		require.NoError(t, recorder.Start())
		defer recorder.Stop()

		stats := recorder.Stats()
		assert.Equal(t, true, stats["started"])
		assert.Equal(t, 2, stats["worker_count"])
	})
}
