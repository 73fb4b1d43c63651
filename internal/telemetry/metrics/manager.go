package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterWorkoutsLogged      prometheus.Counter
	CounterLogins              *prometheus.CounterVec
	CounterExerciseStates      *prometheus.CounterVec
	CounterPlateauStrategies   *prometheus.CounterVec

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRequestDuration        *prometheus.HistogramVec
	HistogramRecommendationDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("rufit", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("rufit", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterWorkoutsLogged := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_logged",
		Help:      "The total number of logged workout rows",
	})
	counterLogins := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logins",
		Help:      "Login attempts by result",
	}, []string{"result"})
	counterExerciseStates := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_exercise_states",
		Help:      "Analysed exercises by progress state",
	}, []string{"state"})
	counterPlateauStrategies := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_plateau_strategies",
		Help:      "Plateau strategies recommended",
	}, []string{"strategy"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})
	histogramRecommendationDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_duration_seconds",
		Help:      "Duration of a single recommendations run in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	return &Manager{
		CounterRequests:                 counterRequests,
		CounterHandleRequestPanic:       counterHandleRequestPanic,
		CounterRateLimitedRequests:      counterRateLimitedRequests,
		CounterWorkoutsLogged:           counterWorkoutsLogged,
		CounterLogins:                   counterLogins,
		CounterExerciseStates:           counterExerciseStates,
		CounterPlateauStrategies:        counterPlateauStrategies,
		GaugeRequests:                   gaugeRequests,
		GaugeLifeSignal:                 gaugeLifeSignal,
		HistogramRequestDuration:        histogramRequestDuration,
		HistogramRecommendationDuration: histogramRecommendationDuration,
	}
}
