// Package timeutil provides time formatting utilities for paytrail.
//
// Timeline timestamps arrive from the API as ISO-8601 strings. This
// package parses them and renders them in the conventions of a locale
// and a time zone, the way a host platform's "toLocaleString" would.
package timeutil

import (
	"fmt"
	"strings"
	"time"

	golocale "github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
)

// InvalidDate is what an unparseable timestamp formats to.
const InvalidDate = "Invalid Date"

// Layouts per supported locale. The first tag is the fallback.
var (
	supportedTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.MustParse("en-IN"),
		language.MustParse("en-AU"),
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.Portuguese,
		language.Japanese,
		language.Chinese,
		language.Hindi,
	}

	supportedLayouts = []string{
		"1/2/2006, 3:04:05 PM",   // en-US
		"02/01/2006, 15:04:05",   // en-GB
		"2/1/2006, 3:04:05 pm",   // en-IN
		"02/01/2006, 3:04:05 pm", // en-AU
		"2.1.2006, 15:04:05",     // de
		"02/01/2006 15:04:05",    // fr
		"2/1/2006, 15:04:05",     // es
		"2/1/2006, 15:04:05",     // it
		"2-1-2006, 15:04:05",     // nl
		"02/01/2006, 15:04:05",   // pt
		"2006/1/2 15:04:05",      // ja
		"2006/1/2 15:04:05",      // zh
		"2/1/2006, 3:04:05 pm",   // hi
	}

	matcher = language.NewMatcher(supportedTags)
)

// isoLayouts are tried in order. Offsets are honored, in extended
// (+05:30) or basic (+0530) form; a timestamp without a zone is taken as
// local time and a bare date as UTC.
var isoLayouts = []struct {
	layout string
	zoned  bool
	utc    bool
}{
	{time.RFC3339, true, false},
	{"2006-01-02T15:04:05Z0700", true, false},
	{"2006-01-02T15:04Z07:00", true, false},
	{"2006-01-02T15:04Z0700", true, false},
	{"2006-01-02T15:04:05", false, false},
	{"2006-01-02T15:04", false, false},
	{"2006-01-02 15:04:05", false, false},
	{"2006-01-02", false, true},
}

// ParseISO parses an ISO-8601 timestamp. Zone-less date-times are read
// in loc.
func ParseISO(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, l := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		switch {
		case l.utc:
			t, err = time.ParseInLocation(l.layout, s, time.UTC)
		case l.zoned:
			t, err = time.Parse(l.layout, s)
		default:
			t, err = time.ParseInLocation(l.layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: not ISO-8601", s)
}

// Formatter renders timestamps for one locale in one time zone.
// It is safe for concurrent use; Format has no side effects.
type Formatter struct {
	tag    language.Tag
	layout string
	loc    *time.Location
}

// NewFormatter builds a Formatter for the given BCP 47 locale name and
// zone. An empty or unknown locale falls back to American English; a nil
// zone means time.Local.
func NewFormatter(locale string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	tag, idx := matchLocale(locale)
	return &Formatter{tag: tag, layout: supportedLayouts[idx], loc: loc}
}

// HostFormatter builds a Formatter for the host's locale and local zone.
func HostFormatter() *Formatter {
	return NewFormatter(HostLocale(), time.Local)
}

// HostLocale returns the host locale name, or "" if it cannot be found.
func HostLocale() string {
	l, err := golocale.GetLocale()
	if err != nil {
		return ""
	}
	return l
}

func matchLocale(locale string) (language.Tag, int) {
	locale = normalizeLocale(locale)
	if locale == "" {
		return supportedTags[0], 0
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return supportedTags[0], 0
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supportedTags[0], 0
	}
	return supportedTags[idx], idx
}

// normalizeLocale turns POSIX names like "de_DE.UTF-8" into "de-DE".
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// Locale returns the matched locale tag.
func (f *Formatter) Locale() language.Tag { return f.tag }

// Zone returns the time zone dates are rendered in.
func (f *Formatter) Zone() *time.Location { return f.loc }

// Format renders an ISO-8601 string, or InvalidDate if it cannot be parsed.
func (f *Formatter) Format(iso string) string {
	t, err := ParseISO(iso, f.loc)
	if err != nil {
		return InvalidDate
	}
	return f.FormatTime(t)
}

// FormatTime renders t in the formatter's zone and locale.
func (f *Formatter) FormatTime(t time.Time) string {
	return t.In(f.loc).Format(f.layout)
}

// FormatDuration formats a duration in milliseconds to a human-readable string.
// Examples: "1.2s", "450ms", "2m 15.3s"
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds / 60)
	remaining := seconds - float64(minutes*60)
	return fmt.Sprintf("%dm %.1fs", minutes, remaining)
}

// RelativeTime returns a human-readable age of t relative to now.
// Examples: "just now", "5s ago", "2m ago", "1h ago", "3d ago"
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
}
