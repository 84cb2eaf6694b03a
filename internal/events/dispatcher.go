package events

import (
	"context"

	"github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Dispatcher receives the lifecycle notifications a sale mutation produced.
// Delivery guarantees are the sink's concern; the sales service hands events
// over once, after a successful save.
type Dispatcher interface {
	Dispatch(ctx context.Context, evts ...domain.Event)
}

// LogDispatcher emits each event as a structured log line and counts it.
// It is the default sink until an external broker is wired in.
type LogDispatcher struct {
	log        *zap.Logger
	dispatched *prometheus.CounterVec
}

// NewLogDispatcher builds the default dispatcher.
func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{
		log: log.Named("events"),
		dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sale_events_dispatched_total",
			Help: "Lifecycle notifications dispatched, by event name.",
		}, []string{"event"}),
	}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, evts ...domain.Event) {
	for _, evt := range evts {
		if evt == nil {
			continue
		}
		d.log.Info("event dispatched",
			zap.String("event", evt.Name()),
			zap.Time("occurred_at", evt.Occurred()),
			zap.Any("payload", evt),
		)
		d.dispatched.WithLabelValues(evt.Name()).Inc()
	}
}
