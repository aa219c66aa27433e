// Package admin exposes a small gin HTTP status surface over a
// MidiInput or MidiOutput: port listing, health, and Prometheus
// metrics, for the cmd/ tools to mount optionally alongside the BLE
// connection itself.
package admin

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bleportable/blemidi/bleport"
)

// Metrics counts the traffic a connection has carried.
type Metrics struct {
	messagesIn  prometheus.Counter
	messagesOut prometheus.Counter
	filtered    prometheus.Counter
	connState   prometheus.Gauge

	startTime time.Time
}

// NewMetrics registers the BLE MIDI collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		messagesIn: factory.NewCounter(prometheus.CounterOpts{
			Name: "blemidi_messages_in_total",
			Help: "MIDI messages delivered to the input callback.",
		}),
		messagesOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "blemidi_messages_out_total",
			Help: "MIDI messages written to an output connection.",
		}),
		filtered: factory.NewCounter(prometheus.CounterOpts{
			Name: "blemidi_messages_filtered_total",
			Help: "Decoded messages dropped by the ignore filter.",
		}),
		connState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blemidi_connection_state",
			Help: "Current bleconn.State of the monitored connection.",
		}),
		startTime: time.Now(),
	}
}

func (m *Metrics) RecordIn(n int)        { m.messagesIn.Add(float64(n)) }
func (m *Metrics) RecordOut(n int)       { m.messagesOut.Add(float64(n)) }
func (m *Metrics) RecordFiltered(n int)  { m.filtered.Add(float64(n)) }
func (m *Metrics) SetState(state int)    { m.connState.Set(float64(state)) }

// PortSource lists the currently known BLE MIDI ports. *blemidi.MidiInput
// and *blemidi.MidiOutput both satisfy it.
type PortSource interface {
	Ports() []bleport.Port
}

// Server is a gin-backed HTTP status endpoint.
type Server struct {
	router  *gin.Engine
	metrics *Metrics
	ready   atomic.Bool
}

// NewServer builds a Server that lists ports from source and reports
// uptime from metrics. /metrics serves Prometheus's default gatherer,
// so it shows collectors registered with prometheus.DefaultRegisterer.
func NewServer(source PortSource, metrics *Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router, metrics: metrics}
	s.ready.Store(true)

	router.GET("/ports", func(c *gin.Context) {
		ports := source.Ports()
		out := make([]gin.H, len(ports))
		for i, p := range ports {
			out[i] = gin.H{
				"id":            p.ID(),
				"adapter_index": p.AdapterIndex,
				"name":          p.Name,
			}
		}
		c.JSON(http.StatusOK, gin.H{"ports": out})
	})

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok", "uptime": time.Since(metrics.startTime).String()}
		if !s.ready.Load() {
			status = http.StatusServiceUnavailable
			body["status"] = "not ready"
		}
		c.JSON(status, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Run starts the HTTP server on addr and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
