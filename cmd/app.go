package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-copilot/internal/fetcher"
	"github.com/sells-group/interview-copilot/internal/provider"
	"github.com/sells-group/interview-copilot/internal/store"
)

// app bundles the long-lived pieces every command needs.
type app struct {
	Store    store.Store
	Dispatch *provider.Dispatcher
}

// initApp opens the settings store and builds the dispatch pipeline.
func initApp(ctx context.Context) (*app, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open settings store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate settings store")
	}

	return &app{
		Store:    st,
		Dispatch: provider.NewDispatcher(st, fetcher.New(fetcher.Options{})),
	}, nil
}

func (a *app) Close() {
	_ = a.Store.Close()
}
