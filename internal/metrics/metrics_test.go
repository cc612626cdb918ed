package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBacklogFetchesByResult(t *testing.T) {
	before := testutil.ToFloat64(BacklogFetches.WithLabelValues(ResultEmpty))
	BacklogFetches.WithLabelValues(ResultEmpty).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(BacklogFetches.WithLabelValues(ResultEmpty)))
}

func TestContentHeightGauge(t *testing.T) {
	ContentHeight.Set(412)
	require.Equal(t, float64(412), testutil.ToFloat64(ContentHeight))
}

func TestCollectorsAreNamespaced(t *testing.T) {
	require.Equal(t, 1, testutil.CollectAndCount(Reflows, "roomview_reflows_total"))
	require.Equal(t, 1, testutil.CollectAndCount(BacklogFetchDuration, "roomview_backlog_fetch_duration_seconds"))
}
