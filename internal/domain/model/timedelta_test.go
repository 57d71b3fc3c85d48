package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
)

func TestElapsedHours(t *testing.T) {
	tests := []struct {
		name    string
		created string
		closed  string
		want    float64
		wantOK  bool
	}{
		{name: "exact hours", created: "2026-01-01T00:00:00Z", closed: "2026-01-01T03:00:00Z", want: 3, wantOK: true},
		{name: "seconds precision", created: "2026-01-01T00:00:00Z", closed: "2026-01-01T00:00:36Z", want: 0.01, wantOK: true},
		{name: "across days", created: "2026-01-01T12:00:00Z", closed: "2026-01-03T00:00:00Z", want: 36, wantOK: true},
		{name: "same instant", created: "2026-01-01T00:00:00Z", closed: "2026-01-01T00:00:00Z", want: 0, wantOK: true},
		{name: "missing closed", created: "2026-01-01T00:00:00Z", closed: "", wantOK: false},
		{name: "missing created", created: "", closed: "2026-01-01T00:00:00Z", wantOK: false},
		{name: "malformed", created: "yesterday", closed: "2026-01-01T00:00:00Z", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := model.ElapsedHours(tt.created, tt.closed)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
				assert.GreaterOrEqual(t, got, 0.0)
			}
		})
	}
}

func TestReviewHours_ZeroTimeUndefined(t *testing.T) {
	_, ok := model.ReviewHours(time.Time{}, time.Now())
	assert.False(t, ok)

	_, ok = model.ReviewHours(time.Now(), time.Time{})
	assert.False(t, ok)
}
