package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFeed(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		err    error
		status string
	}{
		{name: "served", size: 5, status: "ok"},
		{name: "empty", size: 0, status: "empty"},
		{name: "failed", err: errors.New("ledger down"), status: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(FeedRequests.WithLabelValues(tt.status))
			RecordFeed(tt.size, 3*time.Millisecond, tt.err)
			after := testutil.ToFloat64(FeedRequests.WithLabelValues(tt.status))
			if after-before != 1 {
				t.Errorf("FeedRequests{%s} delta = %v, want 1", tt.status, after-before)
			}
		})
	}
}

func TestRecordInteraction(t *testing.T) {
	before := testutil.ToFloat64(Interactions.WithLabelValues("like"))
	RecordInteraction("like")
	RecordInteraction("like")
	if got := testutil.ToFloat64(Interactions.WithLabelValues("like")) - before; got != 2 {
		t.Errorf("Interactions{like} delta = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/healthz", "200"))
	RecordAPIRequest("GET", "/healthz", 200, time.Millisecond)
	if got := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/healthz", "200")) - before; got != 1 {
		t.Errorf("APIRequests delta = %v, want 1", got)
	}
}

func TestRecordFeedbackDropped(t *testing.T) {
	before := testutil.ToFloat64(FeedbackDropped.WithLabelValues("buffer_full"))
	RecordFeedbackDropped("buffer_full", 3)
	RecordFeedbackDropped("buffer_full", 0)
	if got := testutil.ToFloat64(FeedbackDropped.WithLabelValues("buffer_full")) - before; got != 3 {
		t.Errorf("FeedbackDropped{buffer_full} delta = %v, want 3", got)
	}
}
