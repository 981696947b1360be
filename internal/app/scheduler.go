package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OrphanAuditor считает записи, чей слот уже удалён
type OrphanAuditor interface {
	AuditOrphans(ctx context.Context) (int, error)
}

// Job периодическая фоновая задача; ошибка логируется, задача продолжает работать
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler крутит набор Job до Stop или отмены контекста
type Scheduler struct {
	jobs   []Job
	logger *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler создаёт планировщик с аудитом осиротевших записей
func NewScheduler(auditor OrphanAuditor, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	logger = logger.Named("scheduler")

	audit := func(ctx context.Context) error {
		count, err := auditor.AuditOrphans(ctx)
		if err == nil {
			logger.Debug("Orphan audit completed", zap.Int("orphans", count))
		}
		return err
	}

	return &Scheduler{
		jobs:   []Job{{Name: "orphan_audit", Interval: interval, Run: audit}},
		logger: logger,
	}
}

// Start запускает каждую задачу в своей горутине; первый прогон сразу
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.logger.Info("Starting background job", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
}

// Stop останавливает задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Background jobs stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		if err := job.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Background job failed", zap.String("job", job.Name), zap.Error(err))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
