package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func newHTTPMetricsFromRegistry(reg *prometheus.Registry) (*HTTPMetrics, error) {
	return NewHTTPMetrics(reg)
}

// Module wires the prometheus registry and HTTP instruments.
var Module = fx.Module("observability",
	fx.Provide(newRegistry),
	fx.Provide(newHTTPMetricsFromRegistry),
)
