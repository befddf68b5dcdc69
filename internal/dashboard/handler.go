// Package dashboard serves the interactive minimum selling price dashboard
// over HTTP.
package dashboard

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/report"
)

//go:embed static/index.html
var static embed.FS

// errBadQuery marks a query parameter that is not a number.
var errBadQuery = errors.New("query parameter is not a number")

// Handler answers dashboard requests for one plant.
type Handler struct {
	plant       msp.Plant
	sliders     msp.Sliders
	sweepPoints int
	logger      *slog.Logger
	metrics     *Metrics
}

// Options configure a Handler.
type Options struct {
	Plant        msp.Plant
	Sliders      msp.Sliders
	SweepPoints  int
	AllowOrigins []string
	Logger       *slog.Logger
	// Registry receives the dashboard collectors and backs /metrics. Nil
	// uses a fresh registry.
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine with every dashboard route.
func NewRouter(opts Options) (*gin.Engine, error) {
	if err := opts.Sliders.Validate(); err != nil {
		return nil, err
	}
	if opts.SweepPoints < 2 {
		opts.SweepPoints = msp.DefaultSweepPoints
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	h := &Handler{
		plant:       opts.Plant,
		sliders:     opts.Sliders,
		sweepPoints: opts.SweepPoints,
		logger:      logger,
		metrics:     NewMetrics(reg),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.requestLogger())
	r.Use(h.metrics.middleware())
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/", h.index)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/sliders", h.listSliders)
	api.GET("/msp", h.computeMSP)
	api.GET("/msp/sweep", h.sweep)
	api.GET("/msp/sweep.png", h.sweepChart)
	api.GET("/msp/report.pdf", h.scenarioReport)
	return r, nil
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *Handler) index(c *gin.Context) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listSliders(c *gin.Context) {
	c.JSON(http.StatusOK, h.sliders.List())
}

// prices reads the four slider values from the query. Missing values take
// the slider default; present ones are snapped onto the slider grid.
func (h *Handler) prices(c *gin.Context) (msp.Prices, error) {
	p := h.sliders.Defaults()
	fields := []struct {
		key string
		dst *float64
	}{
		{h.sliders.Ethane.Key, &p.Ethane},
		{h.sliders.Electricity.Key, &p.Electricity},
		{h.sliders.Steam.Key, &p.Steam},
		{h.sliders.Refrigeration.Key, &p.Refrigeration},
	}
	for _, f := range fields {
		raw, ok := c.GetQuery(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return msp.Prices{}, fmt.Errorf("%w: %s=%q", errBadQuery, f.key, raw)
		}
		*f.dst = v
	}
	return h.sliders.Snap(p), nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, errBadQuery) {
		status = http.StatusBadRequest
	} else {
		h.metrics.failures.Inc()
	}
	h.logger.Warn("dashboard request failed", "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) compute(c *gin.Context) (msp.Result, bool) {
	prices, err := h.prices(c)
	if err != nil {
		h.fail(c, err)
		return msp.Result{}, false
	}
	res, err := msp.Compute(h.plant, prices)
	if err != nil {
		h.fail(c, err)
		return msp.Result{}, false
	}
	h.metrics.computations.Inc()
	h.metrics.lastMSP.Set(res.MSP)
	return res, true
}

func (h *Handler) runSweep(c *gin.Context) ([]msp.SweepPoint, bool) {
	prices, err := h.prices(c)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	points, err := msp.EthaneSweep(h.plant, prices, h.sliders.Ethane, h.sweepPoints)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	h.metrics.computations.Add(float64(len(points)))
	return points, true
}

func (h *Handler) computeMSP(c *gin.Context) {
	res, ok := h.compute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) sweep(c *gin.Context) {
	points, ok := h.runSweep(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *Handler) sweepChart(c *gin.Context) {
	points, ok := h.runSweep(c)
	if !ok {
		return
	}
	img, err := report.CreateSweepPlot(points)
	if err != nil {
		h.logger.Error("sweep chart failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

func (h *Handler) scenarioReport(c *gin.Context) {
	res, ok := h.compute(c)
	if !ok {
		return
	}
	points, err := msp.EthaneSweep(h.plant, res.Prices, h.sliders.Ethane, h.sweepPoints)
	if err != nil {
		h.fail(c, err)
		return
	}
	chart, err := report.CreateSweepPlot(points)
	if err != nil {
		h.logger.Warn("sweep chart left out of report", "error", err)
		chart = nil
	}
	doc, err := report.BuildScenarioPDF(res, points, chart)
	if err != nil {
		h.logger.Error("scenario report failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="odhe_msp_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
