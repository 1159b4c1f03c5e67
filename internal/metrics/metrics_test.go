package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.ObserveAI("goals", "ok")
	m.ObserveAI("goals", "ok")
	m.ObserveNotification("nutrition-goals-updated", "throttled")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AIRequests.WithLabelValues("goals", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("nutrition-goals-updated", "throttled")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveAI("x", "y") })
}
