package vault

import (
	"regexp"
	"strings"
	"time"
)

// MaxNameLen caps sanitized folder-name fragments.
const MaxNameLen = 30

// Fallbacks used when a title or category name sanitizes to nothing.
const (
	FallbackPageName     = "New_Page"
	FallbackCategoryName = "New_Folder"
)

var (
	illegalChars  = regexp.MustCompile(`[\\/:*?"<>|]`)
	dotsOnly      = regexp.MustCompile(`^\.+$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// Sanitize turns an arbitrary user-supplied name into a filesystem-safe
// folder-name fragment. Deterministic and idempotent: strips characters
// illegal in filesystem names, blocks dot-only traversal names, collapses
// whitespace and underscore runs, and truncates to MaxNameLen runes. An
// input that reduces to nothing becomes fallback.
func Sanitize(name, fallback string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		s = fallback
	}
	s = illegalChars.ReplaceAllString(s, "")
	if dotsOnly.MatchString(s) {
		s = fallback
	}
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if r := []rune(s); len(r) > MaxNameLen {
		s = string(r[:MaxNameLen])
		// Truncation can expose a trailing underscore or a dots-only stub.
		s = strings.Trim(s, "_")
	}
	if s == "" || dotsOnly.MatchString(s) {
		return fallback
	}
	return s
}

// isoLayouts are tried in order when parsing stored timestamps. The editor
// writes naive ISO-8601 without a zone, but RFC3339 input is accepted too.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NowISO returns the current time in the timestamp format stored in
// page documents.
func NowISO() string {
	return time.Now().Format("2006-01-02T15:04:05.999999999")
}

// MakeFolderName builds a page folder name from its title, creation time,
// and ID: "{safeTitle}_{YYYYMMDD-HHMM}_{first 8 chars of id}". The embedded
// ID prefix makes collisions unlikely in practice, though uniqueness is not
// absolutely guaranteed.
func MakeFolderName(title, createdAt, id string) string {
	t, ok := parseISO(createdAt)
	if !ok {
		t = time.Now()
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return Sanitize(title, FallbackPageName) + "_" + t.Format("20060102-1504") + "_" + short
}
