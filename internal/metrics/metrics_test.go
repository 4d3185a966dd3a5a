package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusGetterFunc func(ctx context.Context, input *counting.GetStatusInput) (*counting.GetStatusOutput, error)

func (f statusGetterFunc) GetStatus(ctx context.Context, input *counting.GetStatusInput) (*counting.GetStatusOutput, error) {
	return f(ctx, input)
}

func TestObserveSubmission(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSubmission(&counting.ProcessSubmissionOutput{Result: counting.SubmissionResultCorrect, CreditsAwarded: 2})
	m.ObserveSubmission(&counting.ProcessSubmissionOutput{Result: counting.SubmissionResultCorrect, CreditsAwarded: 2})
	m.ObserveSubmission(&counting.ProcessSubmissionOutput{
		Result: counting.SubmissionResultFailed,
		Reason: counting.FailureReasonWrongNumber,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("correct", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("failed", "wrong_number")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.creditsAwarded))
}

func TestObserveRescue(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRescue(&counting.RequestRescueOutput{Result: counting.RescueResultRescued, CostPaid: 106})
	m.ObserveRescue(&counting.RequestRescueOutput{Result: counting.RescueResultInsufficientFunds, Required: 106})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rescues.WithLabelValues("rescued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rescues.WithLabelValues("insufficient_funds")))
	assert.Equal(t, 106.0, testutil.ToFloat64(m.creditsSpent))
}

func TestNilMetricsRecordsNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSubmission(&counting.ProcessSubmissionOutput{Result: counting.SubmissionResultCorrect})
		m.ObserveRescue(&counting.RequestRescueOutput{Result: counting.RescueResultRescued})
	})
}

func TestGameCollector(t *testing.T) {
	collector := NewGameCollector(statusGetterFunc(func(ctx context.Context, input *counting.GetStatusInput) (*counting.GetStatusOutput, error) {
		return &counting.GetStatusOutput{
			Game: &models.Game{
				CurrentCount: 0,
				HighestCount: 48,
				PendingRescue: &models.RescueOffer{
					FailedAtCount: 48,
					ExpiresAt:     time.Now().Add(time.Hour),
				},
			},
			Settings: &models.Settings{Enabled: true, MaxLives: 3},
		}, nil
	}))

	expected := `
# HELP tally_current_count Last accepted number of the counting game
# TYPE tally_current_count gauge
tally_current_count 0
# HELP tally_highest_count Highest number the channel has reached
# TYPE tally_highest_count gauge
tally_highest_count 48
# HELP tally_rescue_pending 1 while a rescue offer can be redeemed
# TYPE tally_rescue_pending gauge
tally_rescue_pending 1
# HELP tally_enabled 1 while the counting game is switched on
# TYPE tally_enabled gauge
tally_enabled 1
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}

func TestGameCollector_StatusError(t *testing.T) {
	collector := NewGameCollector(statusGetterFunc(func(ctx context.Context, input *counting.GetStatusInput) (*counting.GetStatusOutput, error) {
		return nil, errors.New("engine closed")
	}))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(collector))

	_, err := reg.Gather()
	assert.Error(t, err)
}
