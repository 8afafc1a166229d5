// Package metrics exposes the monitor's view of the pipeline as Prometheus
// gauges, plus a small JSON status endpoint for dashboards that do not
// scrape.
package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mark2-vision/pipemon/internal/logwatch"
	"github.com/mark2-vision/pipemon/internal/pipeline"
)

// Exporter publishes the latest monitor observation.
type Exporter struct {
	mu   sync.RWMutex
	last logwatch.Status

	registry      *prometheus.Registry
	stageProgress *prometheus.GaugeVec
	stageActive   *prometheus.GaugeVec
	elapsed       prometheus.Gauge
	waiting       prometheus.Gauge
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		stageProgress: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipemon_stage_progress_percent",
				Help: "Progress of a pipeline stage as parsed from its log (0-100)",
			},
			[]string{"stage"},
		),
		stageActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipemon_stage_active",
				Help: "1 for the stage whose log was written most recently, 0 otherwise",
			},
			[]string{"stage"},
		),
		elapsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipemon_pipeline_elapsed_seconds",
			Help: "Elapsed pipeline time derived from stage log timestamps",
		}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipemon_pipeline_waiting",
			Help: "1 while no stage log has appeared yet",
		}),
	}

	e.registry.MustRegister(e.stageProgress, e.stageActive, e.elapsed, e.waiting)
	return e
}

// Update records a monitor observation.
func (e *Exporter) Update(st logwatch.Status) {
	e.mu.Lock()
	e.last = st
	e.mu.Unlock()

	if st.Waiting {
		e.waiting.Set(1)
		return
	}
	e.waiting.Set(0)
	e.elapsed.Set(st.Elapsed.Seconds())
	e.stageProgress.WithLabelValues(st.Stage).Set(st.Progress)

	for _, s := range pipeline.Stages {
		active := 0.0
		if s == st.Stage {
			active = 1.0
		}
		e.stageActive.WithLabelValues(s).Set(active)
	}
}

// statusResponse is the JSON shape served on /status.
type statusResponse struct {
	Stage          string  `json:"stage,omitempty"`
	Progress       float64 `json:"progress"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Waiting        bool    `json:"waiting"`
}

// Handler returns the HTTP routes for the exporter.
func (e *Exporter) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/status", e.handleStatus).Methods("GET")
	return r
}

func (e *Exporter) handleStatus(w http.ResponseWriter, r *http.Request) {
	e.mu.RLock()
	st := e.last
	e.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusResponse{
		Stage:          st.Stage,
		Progress:       st.Progress,
		ElapsedSeconds: st.Elapsed.Seconds(),
		Waiting:        st.Waiting,
	})
}

// Serve starts the exporter HTTP server. The caller owns shutdown. The
// returned channel yields the listen error when the server dies for any
// reason other than a clean shutdown, then closes.
func (e *Exporter) Serve(addr string) (*http.Server, <-chan error) {
	srv := &http.Server{
		Addr:         addr,
		Handler:      e.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return srv, errCh
}
