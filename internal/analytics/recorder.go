// Package analytics implements the fire-and-forget event sink behind the
// track endpoints. Events are enriched and written off the request path;
// a failed or dropped event is logged and lost. That loss is intentional:
// the retry budget is zero, and nothing here may ever surface to the user
// action that produced the event.
package analytics

import (
	"LinkBio-Backend/internal/domain"
	"LinkBio-Backend/internal/repository"
	"LinkBio-Backend/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventMeta carries the client metadata captured from request headers.
type EventMeta struct {
	UserAgent *string
	IPAddress *string
	Referrer  *string
	Country   *string
	City      *string
}

// event is one queued job: a page view when LinkID is empty, a link click
// otherwise.
type event struct {
	ProfileID  string
	LinkID     string
	Meta       EventMeta
	OccurredAt time.Time
}

// Config holds configuration for the recorder.
type Config struct {
	WorkerCount     int           // number of worker goroutines
	BufferSize      int           // size of the job queue buffer
	WriteTimeout    time.Duration // per-event datastore write deadline
	ShutdownTimeout time.Duration // time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		WorkerCount:     3,
		BufferSize:      1000,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Recorder accepts analytics events and persists them asynchronously.
type Recorder struct {
	config  Config
	storage repository.Storage
	ua      *useragent.Parser
	log     *zap.Logger

	jobQueue chan event
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewRecorder creates a new analytics recorder. The User-Agent parser is
// optional; without it events keep their raw UA string only.
func NewRecorder(storage repository.Storage, ua *useragent.Parser, log *zap.Logger, config Config) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:   config,
		storage:  storage,
		ua:       ua,
		log:      log,
		jobQueue: make(chan event, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting analytics recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("buffer_size", r.config.BufferSize),
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop drains the queue and shuts the workers down, bounded by the
// configured shutdown timeout.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping analytics recorder", zap.Int("queued", len(r.jobQueue)))
	close(r.jobQueue)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("analytics recorder stopped")
	case <-time.After(r.config.ShutdownTimeout):
		r.cancel()
		r.log.Warn("analytics recorder shutdown timeout reached, events dropped",
			zap.Int("dropped", len(r.jobQueue)))
	}

	r.started = false
	return nil
}

// SubmitPageView queues a profile view event. Never blocks: a full queue
// drops the event.
func (r *Recorder) SubmitPageView(profileID string, meta EventMeta) {
	r.submit(event{ProfileID: profileID, Meta: meta, OccurredAt: time.Now().UTC()})
}

// SubmitLinkClick queues a link click event. Never blocks: a full queue
// drops the event.
func (r *Recorder) SubmitLinkClick(linkID, profileID string, meta EventMeta) {
	r.submit(event{ProfileID: profileID, LinkID: linkID, Meta: meta, OccurredAt: time.Now().UTC()})
}

func (r *Recorder) submit(ev event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		r.log.Warn("analytics recorder not started, dropping event", zap.String("profile_id", ev.ProfileID))
		return
	}

	select {
	case r.jobQueue <- ev:
	default:
		r.log.Error("analytics queue is full, dropping event",
			zap.String("profile_id", ev.ProfileID),
			zap.String("link_id", ev.LinkID),
			zap.Int("queue_size", len(r.jobQueue)),
		)
	}
}

func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Debug("analytics worker started")

	for ev := range r.jobQueue {
		r.process(log, ev)
	}

	log.Debug("analytics worker stopped")
}

// process writes a single event. No retries: a failure is logged and the
// event is gone.
func (r *Recorder) process(log *zap.Logger, ev event) {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.WriteTimeout)
	defer cancel()

	deviceType, browser, os := r.classify(ev.Meta.UserAgent)

	var err error
	if ev.LinkID == "" {
		view := &domain.PageView{
			ProfileID:  ev.ProfileID,
			ViewedAt:   ev.OccurredAt,
			UserAgent:  ev.Meta.UserAgent,
			IPAddress:  ev.Meta.IPAddress,
			Referrer:   ev.Meta.Referrer,
			Country:    ev.Meta.Country,
			City:       ev.Meta.City,
			DeviceType: deviceType,
			Browser:    browser,
			OS:         os,
		}
		err = r.storage.CreatePageView(ctx, view)
	} else {
		click := &domain.LinkClick{
			LinkID:     ev.LinkID,
			ProfileID:  ev.ProfileID,
			ClickedAt:  ev.OccurredAt,
			UserAgent:  ev.Meta.UserAgent,
			IPAddress:  ev.Meta.IPAddress,
			Referrer:   ev.Meta.Referrer,
			Country:    ev.Meta.Country,
			City:       ev.Meta.City,
			DeviceType: deviceType,
			Browser:    browser,
			OS:         os,
		}
		err = r.storage.CreateLinkClick(ctx, click)
	}

	if err != nil {
		log.Error("failed to record analytics event, event lost",
			zap.String("profile_id", ev.ProfileID),
			zap.String("link_id", ev.LinkID),
			zap.Error(err),
		)
	}
}

func (r *Recorder) classify(userAgent *string) (deviceType, browser, os *string) {
	if r.ua == nil || userAgent == nil || *userAgent == "" {
		return nil, nil, nil
	}
	info := r.ua.Parse(*userAgent)
	return &info.DeviceType, &info.Browser, &info.OS
}

// Stats returns recorder statistics for the health endpoint.
func (r *Recorder) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"started":        r.started,
		"queue_length":   len(r.jobQueue),
		"queue_capacity": cap(r.jobQueue),
		"worker_count":   r.config.WorkerCount,
	}
}
