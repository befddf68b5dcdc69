package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/user/odhe_tea_go/internal/config"
	"github.com/user/odhe_tea_go/internal/msp"
	"github.com/user/odhe_tea_go/internal/report"
	"github.com/user/odhe_tea_go/internal/study"
)

// Events emitted to the frontend.
const (
	eventStatus   = "statusUpdate"
	eventClearLog = "clearLog"
	eventStart    = "generationStart"
	eventComplete = "generationComplete"
)

var errRunInProgress = errors.New("a sensitivity study is already running")

// App struct
type App struct {
	ctx    context.Context
	cfg    config.Config
	logger *slog.Logger

	// emit delivers frontend events; replaced in tests.
	emit func(event string, data ...interface{})

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewApp creates a new App application struct
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	a := &App{cfg: cfg, logger: logger}
	a.emit = func(event string, data ...interface{}) {
		if a.ctx != nil {
			runtime.EventsEmit(a.ctx, event, data...)
		}
	}
	return a
}

// Startup is called when the app starts. The context is saved so we can
// call the runtime methods.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	runtime.WindowSetTitle(a.ctx, "ODHE TEA Dashboard")
}

func (a *App) sendStatus(message string) {
	a.emit(eventStatus, message)
	a.logger.Info(message)
}

// Sliders returns the four price controls in display order.
func (a *App) Sliders() []msp.Slider {
	return a.cfg.Sliders.List()
}

// ComputeMSP snaps the prices onto the slider grid and evaluates the
// scenario.
func (a *App) ComputeMSP(prices msp.Prices) (msp.Result, error) {
	res, err := msp.Compute(a.cfg.Plant, a.cfg.Sliders.Snap(prices))
	if err != nil {
		a.logger.Warn("MSP calculation failed", "error", err)
		return msp.Result{}, err
	}
	return res, nil
}

// EthaneSweep evaluates the MSP across the ethane slider range.
func (a *App) EthaneSweep(prices msp.Prices) ([]msp.SweepPoint, error) {
	return msp.EthaneSweep(a.cfg.Plant, a.cfg.Sliders.Snap(prices), a.cfg.Sliders.Ethane, a.cfg.Server.SweepPoints)
}

// SweepChart returns the sweep line chart as a base64 PNG for an <img>
// data URL.
func (a *App) SweepChart(prices msp.Prices) (string, error) {
	points, err := a.EthaneSweep(prices)
	if err != nil {
		return "", err
	}
	img, err := report.CreateSweepPlot(points)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(img), nil
}

// HandleRunSensitivity is called from the frontend to start a sensitivity
// study. Progress and the outcome arrive as events; the returned string is
// only an acknowledgement.
func (a *App) HandleRunSensitivity(outDir string, sampleSize int, secondOrder bool, writePDF bool) (string, error) {
	cfg := a.cfg
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if sampleSize > 0 {
		cfg.Study.SampleSize = sampleSize
	}
	cfg.Study.SecondOrder = secondOrder
	cfg.Output.PDF = writePDF
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return "", errRunInProgress
	}
	a.running = true
	a.done = make(chan struct{})
	done := a.done
	a.mu.Unlock()

	a.emit(eventClearLog)
	a.sendStatus(fmt.Sprintf("Request: N=%d, second order=%t, output=[%s]", cfg.Study.SampleSize, secondOrder, cfg.Output.Dir))

	go func() { // keep the UI responsive
		defer func() {
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			close(done)
		}()
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("PANIC recovered: %v", r)
				a.sendStatus(errMsg)
				a.emit(eventComplete, false, errMsg)
			}
		}()

		a.emit(eventStart)

		ctx := a.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		summary, err := study.Run(ctx, cfg, study.Options{
			Logger: a.logger,
			Progress: func(_ study.Stage, msg string) {
				a.emit(eventStatus, msg)
			},
		})
		if err != nil {
			errMsg := fmt.Sprintf("Sensitivity study failed: %v", err)
			a.sendStatus(errMsg)
			a.emit(eventComplete, false, errMsg)
			return
		}

		for _, r := range summary.Indices.RankByTotalOrder() {
			a.sendStatus(fmt.Sprintf("- %s: ST = %.4f", r.Name, r.Value))
		}
		successMsg := fmt.Sprintf("Results saved to %s", cfg.Output.Dir)
		a.sendStatus(successMsg)
		a.emit(eventComplete, true, successMsg)
	}()

	return "Sensitivity study started in background.", nil
}

// wait blocks until the current study, if any, has finished.
func (a *App) wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
}
