package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when events are logged outside Start/Stop
	ErrNotStarted = errors.New("audit service not started")

	// ErrBufferFull is returned when an event had to be dropped
	ErrBufferFull = errors.New("audit event buffer full")
)

// RequestMeta extracts request id, client IP and user agent from a request context.
type RequestMeta func(ctx context.Context) (requestID, ipAddress, userAgent string)

// Config holds configuration for the AuditService
type Config struct {
	BufferSize   int // Size of the event buffer channel
	WorkerCount  int // Number of concurrent workers
	WriteTimeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:   256,
		WorkerCount:  2,
		WriteTimeout: 5 * time.Second,
	}
}

// AuditService writes audit logs asynchronously through a small worker pool.
type AuditService struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	requestMeta RequestMeta
	eventChan   chan *models.AuditLog
	config      Config
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	dropped     int
	mu          sync.Mutex
}

// Option customizes an AuditService.
type Option func(*AuditService)

// WithRequestMeta enriches every recorded entry from the request context.
func WithRequestMeta(fn RequestMeta) Option {
	return func(s *AuditService) {
		s.requestMeta = fn
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config, opts ...Option) *AuditService {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	s := &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
		eventChan: make(chan *models.AuditLog, config.BufferSize),
		config:    config,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.config.WorkerCount),
		zap.Int("buffer_size", s.config.BufferSize))

	return nil
}

// Stop drains pending events, giving up after timeout.
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.stopped = true
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent queues an entry without blocking. A full buffer drops it.
func (s *AuditService) LogEvent(entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return ErrNotStarted
	}

	select {
	case s.eventChan <- entry:
		return nil
	default:
		s.dropped++
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(entry.Action)),
			zap.Int("dropped_total", s.dropped))
		return ErrBufferFull
	}
}

// Record fills in request metadata from ctx and queues entry. Failures are
// logged, never returned.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if s.requestMeta != nil && entry.RequestID == "" {
		entry.WithRequest(s.requestMeta(ctx))
	}
	if err := s.LogEvent(entry); err != nil && !errors.Is(err, ErrBufferFull) {
		s.logger.Debug("audit event not recorded",
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for entry := range s.eventChan {
		if err := s.processEvent(entry); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(entry.Action)))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *AuditService) processEvent(entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
	defer cancel()

	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.config.BufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.config.WorkerCount,
		Dropped:       s.dropped,
		Started:       s.started && !s.stopped,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Dropped       int
	Started       bool
}
