package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const schedulerActor = "scheduler"

// Scheduler закрывает опубликованные RFQ с истёкшим сроком и запускает оценку.
type Scheduler struct {
	solicitations *SolicitationService
	evaluator     *EvaluationService
	interval      time.Duration
	log           *zap.Logger
	stopCh        chan struct{}
}

// NewScheduler создаёт планировщик с заданным интервалом опроса.
func NewScheduler(solicitations *SolicitationService, evaluator *EvaluationService, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		solicitations: solicitations,
		evaluator:     evaluator,
		interval:      interval,
		log:           log,
		stopCh:        make(chan struct{}),
	}
}

// Start запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting deadline scheduler", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	s.log.Info("stopping deadline scheduler")
	close(s.stopCh)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.stopCh:
			s.log.Info("deadline scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("deadline scheduler cancelled")
			return
		}
	}
}

// tick дооценивает RFQ, чья оценка не была зафиксирована (сбой или
// перезапуск после закрытия), затем закрывает RFQ с истёкшим сроком.
func (s *Scheduler) tick(ctx context.Context) {
	if err := s.RecoverClosed(ctx); err != nil {
		s.log.Error("closed solicitations recovery failed", zap.Error(err))
	}
	if err := s.CloseDue(ctx); err != nil {
		s.log.Error("deadline pass failed", zap.Error(err))
	}
}

// CloseDue закрывает все RFQ с истёкшим сроком. Ошибка одного RFQ не
// останавливает обработку остальных.
func (s *Scheduler) CloseDue(ctx context.Context) error {
	ids, err := s.solicitations.Store.Solicitations.ListDueSolicitations(ctx, s.solicitations.Now())
	if err != nil {
		return err
	}
	for _, id := range ids {
		result, err := s.solicitations.Close(ctx, id, schedulerActor)
		if err != nil {
			s.log.Warn("closing due solicitation failed", zap.String("solicitation_id", id), zap.Error(err))
			continue
		}
		s.log.Info("due solicitation closed",
			zap.String("solicitation_id", id),
			zap.String("status", string(result.Status)),
		)
	}
	return nil
}

// RecoverClosed повторяет оценку закрытых RFQ, у которых нет отметки об
// оценке. RFQ, оставшиеся CLOSED из-за позиций без котировок, уже отмечены
// и повторно не оцениваются.
func (s *Scheduler) RecoverClosed(ctx context.Context) error {
	ids, err := s.evaluator.Store.Solicitations.ListUnevaluatedSolicitations(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.evaluator.Evaluate(ctx, id, schedulerActor); err != nil {
			s.log.Warn("re-evaluation failed", zap.String("solicitation_id", id), zap.Error(err))
		}
	}
	return nil
}
