package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"tickerchat/internal/chat"
	"tickerchat/internal/config"
	"tickerchat/internal/render"
	"tickerchat/internal/ticker"
	"tickerchat/internal/transport"
	"tickerchat/internal/tui"
	"tickerchat/internal/util"
)

func main() {
	cfgFlag := pflag.StringP("config", "c", "", "config file (default $TICKERCHAT_CONFIG or "+config.DefaultPath+")")
	pflag.Parse()

	cfgPath, optional := config.Resolve(*cfgFlag)
	cfg, err := config.Load(cfgPath, optional)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logger, logFile, err := util.OpenLogFile(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.Info("starting", "server", cfg.ChatURL(), "tickers", cfg.Tickers.Source)

	loader, err := ticker.NewLoader(cfg, logger)
	if err != nil {
		logger.Error("ticker autocomplete disabled", "error", err)
	}
	defer loader.Close()

	dialer := &transport.Dialer{
		URL:     cfg.ChatURL(),
		Origin:  cfg.Server.Origin,
		Timeout: cfg.Server.DialTimeout,
		Log:     logger,
	}
	ctrl := chat.NewController(
		chat.NewTranscript(),
		dialer.ChatDialer(),
		util.NewRateLimiter(cfg.Chat.MaxQueriesPerMin),
		logger,
	)

	opts := tui.Options{
		Controller: ctrl,
		Renderer:   render.NewTerminal(cfg.UI.Style, cfg.UI.WordWrap, logger),
		Server:     cfg.Server.URL,
		Log:        logger,
	}
	if loader != nil {
		opts.Tickers = loader
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
