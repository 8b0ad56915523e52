package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/service/appointment"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
)

// QueueGaugeWorker keeps the per-department queue length gauge current for
// today even when nobody is reading the queue.
type QueueGaugeWorker struct {
	appointments *appointment.Service
	interval     time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

func NewQueueGaugeWorker(appointments *appointment.Service, interval time.Duration, logger *logger.Logger) *QueueGaugeWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &QueueGaugeWorker{
		appointments: appointments,
		interval:     interval,
		logger:       logger.With("queue_gauge"),
		now:          time.Now,
	}
}

func (w *QueueGaugeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *QueueGaugeWorker) refresh(ctx context.Context) {
	if _, err := w.appointments.Queue(ctx, w.now().Format(model.DateLayout), ""); err != nil {
		w.logger.Error(err, "Failed to refresh queue gauge")
	}
}
