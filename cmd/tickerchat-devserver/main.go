package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"tickerchat/internal/api"
	"tickerchat/internal/chat"
	"tickerchat/internal/ticker"
	"tickerchat/internal/util"
)

var sampleTickers = []ticker.Record{
	{Ticker: "AAPL", Title: "Apple Inc."},
	{Ticker: "MSFT", Title: "Microsoft Corp"},
	{Ticker: "NVDA", Title: "NVIDIA Corp"},
	{Ticker: "GOOGL", Title: "Alphabet Inc."},
	{Ticker: "AMZN", Title: "Amazon Com Inc"},
	{Ticker: "TSLA", Title: "Tesla, Inc."},
}

func main() {
	addr := pflag.String("addr", "localhost:8000", "listen address")
	tickerFile := pflag.String("tickers", "", "JSON or CSV ticker list (default: a built-in sample)")
	delay := pflag.Duration("delay", 150*time.Millisecond, "delay between chat frames")
	level := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	logger := util.NewLogger(*level, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tickers := sampleTickers
	if *tickerFile != "" {
		recs, err := (&ticker.FileSource{Path: *tickerFile}).Load(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading tickers: %v\n", err)
			os.Exit(1)
		}
		tickers = recs
	}

	responder := &api.ScriptResponder{
		Delay: *delay,
		Articles: []api.Article{
			{
				URL:      "https://news.example.com/markets/stocks-rally-on-earnings",
				Headline: "Stocks rally on earnings",
				Images: []chat.ImageCandidate{
					{Size: "large", URL: "https://img.example.com/rally-large.jpg"},
					{Size: "thumb", URL: "https://img.example.com/rally-thumb.jpg"},
				},
			},
			{
				URL:    "https://news.example.com/markets/fed-holds-rates-steady",
				Images: []chat.ImageCandidate{{Size: "small", URL: "https://img.example.com/fed-small.jpg"}},
			},
		},
		Answer: func(q string) string {
			return fmt.Sprintf("Here is a **sample answer** for _%s_. Markets were mixed; see the attached articles.", q)
		},
	}

	srv := api.NewServer(*addr, tickers, responder, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
