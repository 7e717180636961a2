package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/webserve/internal/infra/buildinfo"
)

// BuildInfoCollector exports a constant gauge labelled with build metadata.
type BuildInfoCollector struct {
	desc *prometheus.Desc
	info buildinfo.Info
}

// NewBuildInfoCollector creates a collector for the running binary.
func NewBuildInfoCollector() *BuildInfoCollector {
	return &BuildInfoCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "build_info"),
			"Build information of the running binary; value is always 1.",
			[]string{"version", "commit", "goversion"},
			nil,
		),
		info: buildinfo.Get(),
	}
}

// Describe implements prometheus.Collector.
func (c *BuildInfoCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *BuildInfoCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1,
		c.info.Version, c.info.Commit, c.info.GoVersion)
}
