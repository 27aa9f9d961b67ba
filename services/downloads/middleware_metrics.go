package downloads

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anBertoli/snap-share/pkg/store"
)

// The MetricsMiddleware counts created requests and decisions, divided by
// the resulting state. Failed deliveries show up as decisions with the
// delivery_failed state.
type MetricsMiddleware struct {
	Next      Service
	requests  prometheus.Counter
	decisions *prometheus.CounterVec
}

// Declare the counters and register them into the registerer.
func NewMetricsMiddleware(reg prometheus.Registerer, next Service) (*MetricsMiddleware, error) {
	requests := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "downloads_requests_total",
		Help: "Counter of created download requests.",
	})
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_decisions_total",
			Help: "Counter of decided download requests, by state.",
		},
		[]string{"state"},
	)
	for _, c := range []prometheus.Collector{requests, decisions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &MetricsMiddleware{
		Next:      next,
		requests:  requests,
		decisions: decisions,
	}, nil
}

func (mm *MetricsMiddleware) Request(ctx context.Context, galleryID, pictureID int64) (store.DownloadRequest, error) {
	req, err := mm.Next.Request(ctx, galleryID, pictureID)
	if err == nil {
		mm.requests.Inc()
	}
	return req, err
}

func (mm *MetricsMiddleware) Decide(ctx context.Context, requestID int64, approve bool) (Decision, error) {
	decision, err := mm.Next.Decide(ctx, requestID, approve)
	if err == nil {
		mm.decisions.WithLabelValues(decision.State).Inc()
	}
	return decision, err
}

func (mm *MetricsMiddleware) ListPending(ctx context.Context) ([]store.DownloadRequest, error) {
	return mm.Next.ListPending(ctx)
}
