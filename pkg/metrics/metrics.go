package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docentes", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docentes", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docentes", Name: "login_attempts_total", Help: "Login attempts by flow and result."},
		[]string{"flow", "result"},
	)
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docentes", Name: "import_rows_total", Help: "Spreadsheet rows reconciled by outcome."},
		[]string{"outcome"},
	)
	ImportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docentes", Name: "import_runs_total", Help: "Reconciliation runs by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(ImportRows)
	reg.MustRegister(ImportRuns)
}
