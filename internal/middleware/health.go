package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker pings one backing service.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function such as redis or minio Ping.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the record database.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// Readiness describes the optional backends this process was started with.
// Backends maps a role (sessions, records, reports) to the driver serving
// it; Checkers maps the same role to the ping that proves it is reachable.
// A role without a checker is in-process and always ready.
type Readiness struct {
	Backends map[string]string
	Checkers map[string]HealthChecker
	Started  time.Time
}

type readinessReport struct {
	Status   string                  `json:"status"`
	Uptime   string                  `json:"uptime,omitempty"`
	Backends map[string]backendState `json:"backends"`
}

type backendState struct {
	Driver    string `json:"driver"`
	Ready     bool   `json:"ready"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler pings every configured backend in parallel and answers 503
// when any of them is unreachable.
func HealthHandler(rd Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := readinessReport{Status: "ready", Backends: make(map[string]backendState)}
		if !rd.Started.IsZero() {
			report.Uptime = time.Since(rd.Started).Round(time.Second).String()
		}
		for role, driver := range rd.Backends {
			report.Backends[role] = backendState{Driver: driver, Ready: true}
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for role, checker := range rd.Checkers {
			wg.Add(1)
			go func(role string, checker HealthChecker) {
				defer wg.Done()
				start := time.Now()
				err := checker.Check(ctx)
				elapsed := time.Since(start).Milliseconds()

				mu.Lock()
				defer mu.Unlock()
				st := report.Backends[role]
				if st.Driver == "" {
					st.Driver = role
				}
				st.LatencyMS = elapsed
				st.Ready = err == nil
				if err != nil {
					st.Error = err.Error()
					report.Status = "degraded"
				}
				report.Backends[role] = st
			}(role, checker)
		}
		wg.Wait()

		code := http.StatusOK
		if report.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

// LivenessHandler answers as long as the process is serving.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
