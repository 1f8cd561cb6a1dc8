package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"tickerchat/internal/config"
	"tickerchat/internal/render"
	"tickerchat/internal/ticker"
	"tickerchat/internal/util"
	"tickerchat/pkg/tickerchat"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tickerchat-cli [options] <command> [args]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version          Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  symbols <query>  List tickers matching query\n")
	fmt.Fprintf(os.Stderr, "  ask <query>      Ask one question and print the answer\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	pflag.PrintDefaults()
}

func main() {
	cfgFlag := pflag.StringP("config", "c", "", "config file")
	asHTML := pflag.Bool("html", false, "ask: print the answer as HTML")
	pflag.Usage = usage
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	if args[0] == "version" {
		fmt.Printf("tickerchat-cli %s\n", version)
		return
	}

	cfgPath, optional := config.Resolve(*cfgFlag)
	cfg, err := config.Load(cfgPath, optional)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	query := strings.Join(args[1:], " ")
	switch args[0] {
	case "symbols":
		if err := symbols(ctx, cfg, query); err != nil {
			logger.Error("symbols", "error", err)
			os.Exit(1)
		}

	case "ask":
		client := tickerchat.NewClient(cfg.ChatURL(), cfg.TickerURL(), logger)
		ans, err := client.Ask(ctx, query)
		if err != nil && !errors.Is(err, tickerchat.ErrIncomplete) {
			logger.Error("ask", "error", err)
			os.Exit(1)
		}
		if err := printAnswer(ans, *asHTML, cfg.UI); err != nil {
			logger.Error("rendering answer", "error", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}
}

func symbols(ctx context.Context, cfg *config.Config, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("symbols needs a query")
	}
	logger := util.NewLogger("warn", cfg.Logging.Format, os.Stderr)
	loader, err := ticker.NewLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer loader.Close()

	ix, fromCache := loader.Load(ctx)
	if fromCache {
		fmt.Fprintln(os.Stderr, "(using cached ticker list)")
	}
	for _, r := range ix.Search(query).Matches {
		fmt.Println(r.Label())
	}
	return nil
}

func printAnswer(ans tickerchat.Answer, asHTML bool, ui config.UI) error {
	if asHTML {
		out, err := render.HTML(ans.Text)
		if err != nil {
			return err
		}
		fmt.Print(out)
		for _, r := range ans.Resources {
			headline := r.Headline
			if headline == "" {
				headline = render.Headline(r.URL)
			}
			fmt.Printf("<p><a href=%q target=\"_blank\" rel=\"noopener noreferrer\">%s</a></p>\n", r.URL, headline)
		}
		return nil
	}

	fmt.Println(render.NewTerminal(ui.Style, ui.WordWrap, nil).Render(ans.Text))
	if len(ans.Resources) > 0 {
		fmt.Println()
		for _, r := range ans.Resources {
			headline := r.Headline
			if headline == "" {
				headline = render.Headline(r.URL)
			}
			fmt.Printf("  • %s\n    %s\n", headline, render.StripScheme(r.URL))
		}
	}
	if !ans.Sealed {
		fmt.Fprintln(os.Stderr, "(answer incomplete)")
	}
	return nil
}
