package meterfetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the metering gauges only, so that it can be pushed without the process metrics.
var Registry = prometheus.NewRegistry()

var (
	index = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tsme",
		Subsystem: "metering",
		Name:      "index",
		Help:      "Latest known cumulative index of the meter, in m³.",
	}, []string{"meter_id"})

	volume = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tsme",
		Subsystem: "metering",
		Name:      "daily_volume",
		Help:      "Consumption of the latest day fetched for the meter.",
	}, []string{"meter_id"})

	lastMeasure = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tsme",
		Subsystem: "metering",
		Name:      "last_measure_timestamp_seconds",
		Help:      "Date of the latest day fetched for the meter.",
	}, []string{"meter_id"})
)

func updateMeterMetrics(data MeterData) {
	if len(data.Records) == 0 {
		return
	}

	last := data.Records[len(data.Records)-1]
	volume.WithLabelValues(data.MeterID).Set(last.Volume)
	lastMeasure.WithLabelValues(data.MeterID).Set(float64(last.Date.Unix()))

	if record, ok := data.LastIndex(); ok {
		index.WithLabelValues(data.MeterID).Set(*record.Index)
	}
}
