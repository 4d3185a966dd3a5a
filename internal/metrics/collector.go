package metrics

import (
	"context"
	"time"

	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/prometheus/client_golang/prometheus"
)

const collectTimeout = time.Second

// StatusGetter reads the current game state
type StatusGetter interface {
	GetStatus(ctx context.Context, input *counting.GetStatusInput) (*counting.GetStatusOutput, error)
}

type gameCollector struct {
	sg StatusGetter

	currentCount  *prometheus.Desc
	highestCount  *prometheus.Desc
	rescuePending *prometheus.Desc
	enabled       *prometheus.Desc
}

// NewGameCollector exposes the live game state as gauges, read on every scrape
func NewGameCollector(sg StatusGetter) prometheus.Collector {
	return &gameCollector{
		sg: sg,
		currentCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "current_count"),
			"Last accepted number of the counting game",
			nil, nil,
		),
		highestCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "highest_count"),
			"Highest number the channel has reached",
			nil, nil,
		),
		rescuePending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "rescue_pending"),
			"1 while a rescue offer can be redeemed",
			nil, nil,
		),
		enabled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "enabled"),
			"1 while the counting game is switched on",
			nil, nil,
		),
	}
}

// Describe writes all descriptors to the prometheus desc channel
func (c *gameCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.currentCount
	ch <- c.highestCount
	ch <- c.rescuePending
	ch <- c.enabled
}

// Collect reads the game state and emits one sample per gauge
func (c *gameCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	status, err := c.sg.GetStatus(ctx, &counting.GetStatusInput{})
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.currentCount, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.currentCount, prometheus.GaugeValue, float64(status.Game.CurrentCount))
	ch <- prometheus.MustNewConstMetric(c.highestCount, prometheus.GaugeValue, float64(status.Game.HighestCount))
	ch <- prometheus.MustNewConstMetric(c.rescuePending, prometheus.GaugeValue, boolValue(status.Game.PendingRescue.IsActive(time.Now())))
	ch <- prometheus.MustNewConstMetric(c.enabled, prometheus.GaugeValue, boolValue(status.Settings.Enabled))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
