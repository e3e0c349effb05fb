package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
)

// HTTPMetrics HTTP层请求指标
type HTTPMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.SummaryVec
}

// NewHTTPMetrics 创建并注册HTTP请求指标
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snowflake_http_requests_total",
			Help: "HTTP请求总数。",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name: "snowflake_http_request_duration_seconds",
			Help: "HTTP请求响应延迟（秒）摘要。",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path"}),
	}
	reg.MustRegister(m.requestCounter, m.requestDuration)
	return m
}

// Middleware 返回采集请求计数与延迟的gin中间件
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestCounter.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(
			c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

type metricSpec struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

// GeneratorCollector 将生成器运行指标导出为Prometheus指标
type GeneratorCollector struct {
	gen   core.Generator
	specs map[string]metricSpec
}

// NewGeneratorCollector 创建生成器指标采集器
func NewGeneratorCollector(gen core.Generator) *GeneratorCollector {
	counter := func(name, help string) metricSpec {
		return metricSpec{prometheus.NewDesc(name, help, nil, nil), prometheus.CounterValue}
	}
	gauge := func(name, help string) metricSpec {
		return metricSpec{prometheus.NewDesc(name, help, nil, nil), prometheus.GaugeValue}
	}

	return &GeneratorCollector{
		gen: gen,
		specs: map[string]metricSpec{
			"metrics_enabled":    gauge("snowflake_generator_metrics_enabled", "指标采集是否启用。"),
			"id_count":           counter("snowflake_generator_ids_total", "已生成ID总数。"),
			"sequence_exhausted": counter("snowflake_generator_sequence_exhausted_total", "序列号耗尽次数。"),
			"clock_backward":     counter("snowflake_generator_clock_backward_total", "时钟回拨检测次数。"),
			"wait_count":         counter("snowflake_generator_waits_total", "阻塞等待次数。"),
			"avg_wait_time_ns":   gauge("snowflake_generator_avg_wait_time_ns", "平均等待时长（纳秒）。"),
		},
	}
}

// Describe 实现prometheus.Collector
func (c *GeneratorCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, spec := range c.specs {
		ch <- spec.desc
	}
}

// Collect 实现prometheus.Collector
func (c *GeneratorCollector) Collect(ch chan<- prometheus.Metric) {
	for key, value := range c.gen.GetMetrics() {
		spec, ok := c.specs[key]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(spec.desc, spec.valueType, float64(value))
	}
}
