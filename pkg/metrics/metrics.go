// Package metrics 提供 Prometheus helper，记录定价运行次数、耗时与树规模
package metrics

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/wyfcoding/binomialpricing/pkg/logger"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics 指标集合
type Metrics struct {
	// 定价次数，按类型、行权方式和结果区分
	PricingRunsTotal *prometheus.CounterVec
	// 定价耗时
	PricingDuration *prometheus.HistogramVec
	// 单次定价的节点数
	LatticeNodes prometheus.Histogram
}

// New 创建指标实例
func New(namespace, serviceName string) *Metrics {
	return &Metrics{
		PricingRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "pricing_runs_total",
			Help:      "Total lattice pricing runs",
		}, []string{"kind", "style", "result"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "pricing_duration_seconds",
			Help:      "Lattice pricing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"style"}),
		LatticeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "lattice_nodes",
			Help:      "Number of nodes per priced lattice",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PricingRunsTotal,
		m.PricingDuration,
		m.LatticeNodes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}
	logger.Debug(context.Background(), "Metrics registered successfully")
	return nil
}

// WriteText 以文本暴露格式输出 gatherer 中的全部指标
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Recorder 定价指标记录接口
type Recorder interface {
	// 记录一次定价
	RecordPricing(kind, style, result string, seconds float64, nodes int)
}

// DefaultRecorder 默认指标记录器实现
type DefaultRecorder struct {
	metrics *Metrics
}

// NewDefaultRecorder 创建默认指标记录器
func NewDefaultRecorder(metrics *Metrics) *DefaultRecorder {
	return &DefaultRecorder{metrics: metrics}
}

// RecordPricing 记录一次定价；失败的运行不计入耗时与节点数
func (r *DefaultRecorder) RecordPricing(kind, style, result string, seconds float64, nodes int) {
	r.metrics.PricingRunsTotal.WithLabelValues(kind, style, result).Inc()
	if result != ResultSuccess {
		return
	}
	r.metrics.PricingDuration.WithLabelValues(style).Observe(seconds)
	r.metrics.LatticeNodes.Observe(float64(nodes))
}

// NopRecorder 不记录任何指标
type NopRecorder struct{}

func (NopRecorder) RecordPricing(string, string, string, float64, int) {}
