package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreKeys = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locker",
		Subsystem: "store",
		Name:      "keys",
		Help:      "Entries currently held in the store",
	})

	LocksActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "locker",
		Subsystem: "locks",
		Name:      "active",
		Help:      "Write-locks currently held",
	})

	ReplicaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locker",
		Subsystem: "replica",
		Name:      "requests_total",
		Help:      "Requests handled by the replica serializer",
	}, []string{"type", "status"})

	SweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locker",
		Subsystem: "replica",
		Name:      "sweeps_total",
		Help:      "Sweeper runs by kind (lock, lease)",
	}, []string{"kind"})

	SweptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locker",
		Subsystem: "replica",
		Name:      "swept_total",
		Help:      "Entries removed by the sweepers by kind (lock, lease)",
	}, []string{"kind"})

	CoordinatorOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locker",
		Subsystem: "coordinator",
		Name:      "ops_total",
		Help:      "Coordinated operations by op and outcome",
	}, []string{"op", "status"})

	FanoutDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "locker",
		Subsystem: "coordinator",
		Name:      "fanout_duration_seconds",
		Help:      "Wall time of one broadcast round",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"op"})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locker",
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "gRPC requests by service, method and code",
	}, []string{"service", "method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "locker",
		Subsystem: "grpc",
		Name:      "request_duration_seconds",
		Help:      "gRPC request handling duration",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"service", "method"})
)
