package pipeline

import "github.com/prometheus/client_golang/prometheus"

var stageLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "segmentation_stage_latency_seconds",
	Help: "Pipeline stage latency distribution",
}, []string{"stage"})

func init() {
	prometheus.MustRegister(stageLatency)
}
