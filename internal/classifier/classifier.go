// Package classifier turns raw window samples into normalized session labels.
package classifier

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/pkg/window"
)

// MaxTitleLength bounds sanitized titles, in runes.
const MaxTitleLength = 150

// Rule maps a lowercase substring to a label.
type Rule struct {
	Match string
	Label string
}

// Result is the normalized triple driving session boundaries.
type Result struct {
	App    string
	Domain string // "" when no domain applies
	Title  string
}

var defaultApps = []Rule{
	{"idea", "IntelliJ IDEA"},
	{"code", "Visual Studio Code"},
	{"chrome", "Google Chrome"},
	{"firefox", "Mozilla Firefox"},
	{"msedge", "Microsoft Edge"},
	{"brave", "Brave"},
	{"konsole", "Konsole"},
	{"alacritty", "Alacritty"},
	{"terminal", "Terminal"},
}

var defaultSites = []Rule{
	{"instagram", "instagram.com"},
	{"notion", "notion.so"},
	{"gemini.google", "gemini.google.com"},
	{"chatgpt", "chatgpt.com"},
	{"youtube", "youtube.com"},
	{"github", "github.com"},
	{"discord", "discord.com"},
	{"google.com", "google.com"},
}

var defaultBrowsers = []string{"Google Chrome", "Mozilla Firefox", "Microsoft Edge", "Brave"}

var (
	domainPattern   = regexp.MustCompile(`(?:[a-z0-9-]+\.)+[a-z]{2,6}\b`)
	driveLetterPath = regexp.MustCompile(`(?i)\b[A-Z]:\\(?:[^\\\s]*\\)+`)
	titleSeparators = []string{" – ", " - "}
)

// Classifier holds the lookup tables. It is safe for concurrent use.
type Classifier struct {
	apps       []Rule
	sites      []Rule
	browsers   map[string]bool
	unknownApp string
	noTitle    string
}

// New builds a classifier whose user rules take precedence over built-ins.
func New(cfg config.ClassifierConfig) *Classifier {
	c := &Classifier{
		apps:       append(toRules(cfg.Apps), defaultApps...),
		sites:      append(toRules(cfg.Sites), defaultSites...),
		browsers:   make(map[string]bool),
		unknownApp: cfg.UnknownApp,
		noTitle:    cfg.NoTitle,
	}
	if c.unknownApp == "" {
		c.unknownApp = "Unknown"
	}
	if c.noTitle == "" {
		c.noTitle = "No title"
	}
	for _, b := range append(append([]string{}, defaultBrowsers...), cfg.Browsers...) {
		c.browsers[b] = true
	}
	return c
}

// Default returns a classifier with only the built-in tables.
func Default() *Classifier {
	return New(config.ClassifierConfig{})
}

func toRules(in []config.Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		out = append(out, Rule{Match: strings.ToLower(r.Match), Label: r.Label})
	}
	return out
}

// Classify never fails; missing fields degrade to sentinels.
func (c *Classifier) Classify(s window.Sample) Result {
	app := c.AppLabel(s.OwnerProcessName)
	return Result{
		App:    app,
		Domain: c.DomainLabel(app, s.WindowTitle),
		Title:  c.SanitizeTitle(s.WindowTitle),
	}
}

// AppLabel maps a process name to a product name.
func (c *Classifier) AppLabel(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return c.unknownApp
	}

	lower := strings.ToLower(owner)
	for _, r := range c.apps {
		if strings.Contains(lower, r.Match) {
			return r.Label
		}
	}

	lower = strings.TrimSuffix(lower, ".exe")
	if i := strings.LastIndexAny(lower, `/\`); i >= 0 {
		lower = lower[i+1:]
	}
	if lower == "" {
		return c.unknownApp
	}
	return lower
}

// DomainLabel scans the title for a known site. The generic domain pattern is
// only tried for browser apps so file names in editor titles stay unlabeled.
func (c *Classifier) DomainLabel(app, title string) string {
	if title == "" {
		return ""
	}

	lower := strings.ToLower(title)
	for _, r := range c.sites {
		if strings.Contains(lower, r.Match) {
			return r.Label
		}
	}

	if !c.IsBrowser(app) {
		return ""
	}
	return domainPattern.FindString(lower)
}

// IsBrowser reports whether app is a browser label.
func (c *Classifier) IsBrowser(app string) bool {
	return c.browsers[app]
}

// SanitizeTitle drops appended app context, local paths and excess length.
func (c *Classifier) SanitizeTitle(title string) string {
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 {
			title = title[:i]
			break
		}
	}

	title = driveLetterPath.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = string([]rune(title)[:MaxTitleLength])
	}

	if title == "" {
		return c.noTitle
	}
	return title
}
