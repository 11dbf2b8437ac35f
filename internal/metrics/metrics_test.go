package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"BridgeMessagesSent", BridgeMessagesSent},
		{"BridgeMessagesReceived", BridgeMessagesReceived},
		{"BridgeMessagesDropped", BridgeMessagesDropped},
		{"GalleryEventsDiscarded", GalleryEventsDiscarded},
		{"GalleryWorkerUnresponsive", GalleryWorkerUnresponsive},
		{"ImportRunsTotal", ImportRunsTotal},
		{"ImportDuration", ImportDuration},
		{"ImportItemsTotal", ImportItemsTotal},
		{"ThumbnailFailures", ThumbnailFailures},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(GalleryEventsDiscarded.WithLabelValues("stale"))
	GalleryEventsDiscarded.WithLabelValues("stale").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GalleryEventsDiscarded.WithLabelValues("stale")))
}

func TestHandlerExportsInitializedSeries(t *testing.T) {
	Initialize()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `vidhub_bridge_messages_dropped_total{reason="queue_full"}`))
	assert.True(t, strings.Contains(body, `vidhub_import_runs_total{status="error"}`))
}
