// Package gate decides whether a candidate text may trigger a request. It
// combines the question heuristic, a cooldown between accepted candidates,
// and a bounded set of recently seen fingerprints.
package gate

import (
	"hash/fnv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/interview-copilot/internal/classify"
	"github.com/sells-group/interview-copilot/internal/settings"
)

// fingerprintCap bounds how much text feeds the hash; beyond this prefix
// two candidates are considered the same utterance.
const fingerprintCap = 200

// Gate holds the dedup and cooldown state for one poller. It is not safe
// for concurrent use; each poller owns its own Gate.
type Gate struct {
	capacity int
	now      func() time.Time

	order        []uint64
	seen         map[uint64]struct{}
	lastAccepted time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// New creates a Gate remembering up to capacity fingerprints.
func New(capacity int, opts ...Option) *Gate {
	g := &Gate{
		capacity: capacity,
		now:      time.Now,
		seen:     make(map[uint64]struct{}, capacity),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Admit reports whether text may trigger a request under the given
// settings, and records the acceptance when it may. Checks run in a fixed
// order: classification, cooldown, then the fingerprint set. The cooldown
// is coarser and cheaper, so a duplicate arriving inside the window never
// reaches the set lookup.
func (g *Gate) Admit(text string, s settings.Settings) bool {
	ok := classify.LooksLikeQuestion(text, classify.Options{
		MinLength:           s.MinLength,
		RequireQuestionMark: s.RequireQuestionMark,
	})
	if !ok {
		return false
	}

	now := g.now()
	cooldown := time.Duration(s.CooldownSeconds) * time.Second
	if !g.lastAccepted.IsZero() && now.Sub(g.lastAccepted) < cooldown {
		return false
	}

	fp := Fingerprint(text)
	if _, dup := g.seen[fp]; dup {
		return false
	}

	g.insert(fp)
	g.lastAccepted = now
	return true
}

// insert records a fingerprint, evicting the oldest once over capacity. The
// slice carries insertion order; the map is the membership index.
func (g *Gate) insert(fp uint64) {
	g.order = append(g.order, fp)
	g.seen[fp] = struct{}{}
	if len(g.order) > g.capacity {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.seen, oldest)
	}
}

// Fingerprint hashes the normalized form of text: NFKC fold, lower case,
// collapsed whitespace, capped length.
func Fingerprint(text string) uint64 {
	t := norm.NFKC.String(strings.TrimSpace(text))
	t = strings.ToLower(t)
	t = strings.Join(strings.Fields(t), " ")
	if len(t) > fingerprintCap {
		t = t[:fingerprintCap]
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(t))
	return h.Sum64()
}
