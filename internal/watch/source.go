// Package watch polls live text sources for question candidates and drives
// the classify → gate → dispatch → sink pipeline.
package watch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-rod/rod"
	"github.com/rotisserie/eris"
)

// Source is one live text feed. Read returns the full current text; the
// per-source Candidate rule reduces it to the utterance worth classifying.
type Source interface {
	Name() string
	Interval() time.Duration
	// Capacity is the dedup-set size profile for this source.
	Capacity() int
	// Site identifies where the text comes from, matched against the
	// per-site enable list ("any" always matches).
	Site() string
	Read(ctx context.Context) (string, error)
	Candidate(combined string) string
}

// Clipboard watches the system clipboard, the desktop-app source.
type Clipboard struct {
	read func() (string, error)
}

// NewClipboard creates the clipboard source.
func NewClipboard() *Clipboard {
	return &Clipboard{read: clipboard.ReadAll}
}

func (c *Clipboard) Name() string            { return "clipboard" }
func (c *Clipboard) Interval() time.Duration { return 800 * time.Millisecond }
func (c *Clipboard) Capacity() int           { return 100 }
func (c *Clipboard) Site() string            { return "any" }

func (c *Clipboard) Read(context.Context) (string, error) {
	text, err := c.read()
	if err != nil {
		return "", eris.Wrap(err, "watch: read clipboard")
	}
	return text, nil
}

// Candidate for the clipboard is the whole string.
func (c *Clipboard) Candidate(combined string) string {
	return strings.TrimSpace(combined)
}

// captionSelectors lists where meeting pages render live captions.
var captionSelectors = []string{
	`[aria-live="polite"]`,
	`[aria-live="assertive"]`,
	`[role="alert"]`,
	`[data-is-caption]`,
	`[data-caption]`,
	`[data-is-transcript]`,
	`.caption`, `.captions`, `.transcript`, `.live-transcript`, `.live-captions`,
}

// Captions reads live caption nodes from a browser page over CDP.
type Captions struct {
	page *rod.Page
	site string
}

// NewCaptions creates a caption source attached to an open page. The page's
// hostname decides which per-site enable flag governs it.
func NewCaptions(page *rod.Page) (*Captions, error) {
	info, err := page.Info()
	if err != nil {
		return nil, eris.Wrap(err, "watch: read page info")
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "watch: parse page url %s", info.URL)
	}
	return &Captions{page: page, site: siteTag(u.Hostname())}, nil
}

func (c *Captions) Name() string            { return "captions" }
func (c *Captions) Interval() time.Duration { return time.Second }
func (c *Captions) Capacity() int           { return 50 }
func (c *Captions) Site() string            { return c.site }

// Read concatenates the visible text of every caption node.
func (c *Captions) Read(ctx context.Context) (string, error) {
	page := c.page.Context(ctx)

	var combined strings.Builder
	for _, sel := range captionSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			visible, err := el.Visible()
			if err != nil || !visible {
				continue
			}
			text, err := el.Text()
			if err != nil || text == "" {
				continue
			}
			combined.WriteString("\n")
			combined.WriteString(text)
		}
	}
	return strings.TrimSpace(combined.String()), nil
}

// Candidate for captions is the last non-empty line, the freshest
// utterance in a rolling transcript.
func (c *Captions) Candidate(combined string) string {
	return lastNonEmptyLine(combined)
}

func lastNonEmptyLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// siteTag maps a hostname onto its enable-flag name; unrecognized hosts get
// an empty tag and never match the allow-list.
func siteTag(hostname string) string {
	h := strings.ToLower(hostname)
	switch {
	case h == "meet.google.com":
		return "meet"
	case h == "zoom.us" || h == "zoom.com" ||
		strings.HasSuffix(h, ".zoom.us") || strings.HasSuffix(h, ".zoom.com"):
		return "zoom"
	case h == "teams.microsoft.com":
		return "teams"
	default:
		return ""
	}
}

// siteAllowed reports whether a source's site passes the enable list.
func siteAllowed(sites []string, tag string) bool {
	if tag == "any" {
		return true
	}
	for _, s := range sites {
		if s == "any" || s == tag {
			return true
		}
	}
	return false
}
