package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
)

// Exporter is the slice of the prompt service a backup needs.
type Exporter interface {
	ExportAll(ctx context.Context) domainprompt.ExportFile
}

// WriteFunc stores an export file under dir and returns where it went.
type WriteFunc func(dir string, f domainprompt.ExportFile) (string, error)

// Scheduler writes a full export on a cron schedule. Each run produces the
// same document a manual export would.
type Scheduler struct {
	cron     *cron.Cron
	exporter Exporter
	write    WriteFunc
	dir      string
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	last    string
}

func New(exporter Exporter, write WriteFunc, dir string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		exporter: exporter,
		write:    write,
		dir:      dir,
		logger:   logger.Named("backup"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers schedule (standard five-field cron or a descriptor such as
// @daily) and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("backup scheduler already started")
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.RunOnce(s.ctx); err != nil {
			s.logger.Error("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("backup scheduler started", zap.String("schedule", schedule), zap.String("dir", s.dir))
	return nil
}

// RunOnce writes one export immediately and returns its path.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	f := s.exporter.ExportAll(ctx)
	path, err := s.write(s.dir, f)
	if err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.mu.Lock()
	s.last = path
	s.mu.Unlock()

	s.logger.Info("backup written", zap.String("path", path), zap.Int("count", len(f.Document.Prompts)))
	return path, nil
}

// Last returns the path of the most recent successful backup.
func (s *Scheduler) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && len(s.cron.Entries()) > 0
}

// Stop waits for a running backup to finish and stops the schedule.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if started {
		<-s.cron.Stop().Done()
		s.logger.Info("backup scheduler stopped")
	}
	s.cancel()
}
