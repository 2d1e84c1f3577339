package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-rod/rod"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/interview-copilot/internal/gate"
	"github.com/sells-group/interview-copilot/internal/sink"
	"github.com/sells-group/interview-copilot/internal/watch"
)

var (
	watchClipboard bool
	watchCaptions  bool
	watchBrowser   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch text sources and answer detected questions",
	Long: `Watch the clipboard and meeting captions for questions.

Detected questions are sent to the configured provider and the answers are
delivered to the overlay webhook when one is configured, falling back to
the console otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		var out sink.Sink = sink.NewConsole(os.Stdout)
		if cfg.Overlay.WebhookURL != "" {
			out = sink.NewFallback(sink.NewWebhook(cfg.Overlay.WebhookURL), out)
		}

		var sources []watch.Source
		if watchClipboard {
			sources = append(sources, watch.NewClipboard())
		}
		if watchCaptions {
			src, err := captionSource(ctx)
			if err != nil {
				zap.L().Warn("caption source unavailable", zap.Error(err))
			} else {
				sources = append(sources, src)
			}
		}
		if len(sources) == 0 {
			return eris.New("watch: no sources enabled")
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, src := range sources {
			p := watch.NewPoller(src, gate.New(src.Capacity()), app.Store, app.Dispatch, out)
			g.Go(func() error { return p.Run(ctx) })
		}

		if err := g.Wait(); err != nil && err != ctx.Err() {
			return err
		}
		return nil
	},
}

// captionSource connects to a running browser over DevTools and attaches
// to the first open meeting tab.
func captionSource(ctx context.Context) (*watch.Captions, error) {
	url := watchBrowser
	if url == "" {
		url = cfg.Watch.BrowserURL
	}
	if url == "" {
		return nil, eris.New("watch: no browser URL configured")
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, eris.Wrap(err, "watch: connect browser")
	}

	pages, err := browser.Pages()
	if err != nil {
		return nil, eris.Wrap(err, "watch: list pages")
	}
	for _, page := range pages {
		src, err := watch.NewCaptions(page)
		if err != nil {
			continue
		}
		if src.Site() != "" {
			return src, nil
		}
	}
	return nil, eris.New("watch: no meeting tab found")
}

func init() {
	watchCmd.Flags().BoolVar(&watchClipboard, "clipboard", true, "watch the clipboard")
	watchCmd.Flags().BoolVar(&watchCaptions, "captions", true, "watch meeting captions")
	watchCmd.Flags().StringVar(&watchBrowser, "browser", "", "browser DevTools URL (default from config)")
	rootCmd.AddCommand(watchCmd)
}
