package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/interview-copilot/internal/gate"
	"github.com/sells-group/interview-copilot/internal/provider"
	"github.com/sells-group/interview-copilot/internal/sink"
)

// Dispatcher sends an admitted question to the configured provider.
type Dispatcher interface {
	Send(ctx context.Context, q provider.Query) (provider.Answer, error)
}

// Poller drives one Source on its tick interval. All pipeline errors stop
// at the tick boundary: they are logged and dropped so one bad tick never
// stops future ticks.
type Poller struct {
	source   Source
	gate     *gate.Gate
	settings provider.SettingsSource
	dispatch Dispatcher
	sink     sink.Sink
	log      *zap.Logger

	lastSeen string
}

// NewPoller wires a poller with its own gate state. Gate state is owned
// here, not package-wide, so independent pollers dedup independently.
func NewPoller(source Source, g *gate.Gate, settingsSource provider.SettingsSource, dispatch Dispatcher, s sink.Sink) *Poller {
	return &Poller{
		source:   source,
		gate:     g,
		settings: settingsSource,
		dispatch: dispatch,
		sink:     s,
		log:      zap.L().With(zap.String("source", source.Name())),
	}
}

// Run ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poller started", zap.Duration("interval", p.source.Interval()))

	ticker := time.NewTicker(p.source.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle. A fresh settings snapshot backs the whole
// cycle, so reconfiguration applies between ticks without a restart.
func (p *Poller) Tick(ctx context.Context) {
	s, err := p.settings.Settings(ctx)
	if err != nil {
		p.log.Warn("settings load failed", zap.Error(err))
		return
	}
	if !s.AutoEnabled || !siteAllowed(s.Sites, p.source.Site()) {
		return
	}

	text, err := p.source.Read(ctx)
	if err != nil {
		p.log.Warn("source read failed", zap.Error(err))
		return
	}
	if text == "" || text == p.lastSeen {
		return
	}
	p.lastSeen = text

	candidate := p.source.Candidate(text)
	if candidate == "" {
		return
	}
	if !p.gate.Admit(candidate, s) {
		return
	}

	// Dispatch off the tick path. Ticks keep firing while a request is
	// in flight; the cooldown bounds how many can be admitted.
	go p.ask(ctx, candidate, s.DefaultTopic)
}

func (p *Poller) ask(ctx context.Context, question, topic string) {
	ans, err := p.dispatch.Send(ctx, provider.Query{Question: question, Topic: topic})
	if err != nil {
		p.log.Warn("dispatch failed", zap.Error(err))
		return
	}
	if err := p.sink.Show(ctx, ans); err != nil {
		p.log.Warn("sink failed", zap.Error(err))
	}
}
