package main

import (
	"embed"
	"flag"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/user/odhe_tea_go/internal/config"
)

//go:embed all:frontend/public
var assets embed.FS

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	app := NewApp(cfg, logger)

	err = wails.Run(&options.App{
		Title:  "ODHE TEA Dashboard",
		Width:  1024,
		Height: 720,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 46, G: 46, B: 46, A: 255}, // #2e2e2e
		OnStartup:        app.Startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("Error running Wails app", "error", err)
		os.Exit(1)
	}
}
