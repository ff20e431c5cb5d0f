// Package query contains the pure filtering and ordering logic for mailbox
// searches. It has no storage dependencies: the app layer scans the queue and
// feeds extracted metadata through a compiled Filter.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/courier/internal/models"
)

// ErrInvalidSince is returned when a since value is neither a relative
// window nor a recognized absolute date. Unlike per-message parse failures,
// a bad since value is fatal to the whole query: the caller supplied it.
var ErrInvalidSince = errors.New("invalid since value")

// Criteria describes a search. All set fields are combined with logical AND.
// A zero Limit means unlimited.
type Criteria struct {
	EventType string
	Artifact  string
	Since     string
	State     string
	FromRole  string
	ToRole    string
	Limit     int
}

// Filter is a compiled Criteria with the since cutoff resolved against a
// fixed reference time, so repeated Matches calls are consistent.
type Filter struct {
	criteria Criteria
	cutoff   int64
}

var relativeSince = regexp.MustCompile(`^(\d+)([dhm])$`)

// Compile resolves the criteria against now. It fails with ErrInvalidSince
// when the since value cannot be interpreted.
func Compile(c Criteria, now time.Time) (*Filter, error) {
	f := &Filter{criteria: c}
	if c.Since == "" {
		return f, nil
	}

	cutoff, err := parseSince(c.Since, now)
	if err != nil {
		return nil, err
	}
	f.cutoff = cutoff
	return f, nil
}

// parseSince interprets a relative window ("7d", "24h", "30m") as now minus
// that duration, or an absolute date/time string.
func parseSince(since string, now time.Time) (int64, error) {
	if m := relativeSince.FindStringSubmatch(since); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSince, since)
		}
		var d time.Duration
		switch m[2] {
		case "d":
			d = time.Duration(n) * 24 * time.Hour
		case "h":
			d = time.Duration(n) * time.Hour
		case "m":
			d = time.Duration(n) * time.Minute
		}
		return now.Add(-d).Unix(), nil
	}

	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
	} {
		if t, err := time.ParseInLocation(layout, since, now.Location()); err == nil {
			return t.Unix(), nil
		}
	}

	return 0, fmt.Errorf("%w: %q (use forms like 7d, 24h, 30m, or 2025-11-01)", ErrInvalidSince, since)
}

// Matches reports whether a metadata record satisfies every set criterion.
func (f *Filter) Matches(m models.Metadata) bool {
	c := f.criteria

	if c.Since != "" && m.Timestamp < f.cutoff {
		return false
	}
	if c.EventType != "" && m.EventType != c.EventType {
		return false
	}
	if c.Artifact != "" && !artifactMatches(m.Artifacts, c.Artifact) {
		return false
	}
	if c.State != "" && m.State != c.State {
		return false
	}
	if c.FromRole != "" && !strings.HasPrefix(m.From, c.FromRole) {
		return false
	}
	if c.ToRole != "" && !strings.HasPrefix(m.To, c.ToRole) {
		return false
	}
	return true
}

// artifactMatches uses symmetric containment: the filter may name a suffix of
// a stored path ("auth.md" matching "project-meta/specs/auth.md") or a longer
// path than was stored. Unrelated names never match.
func artifactMatches(artifacts []string, pattern string) bool {
	for _, a := range artifacts {
		if strings.Contains(a, pattern) || strings.Contains(pattern, a) {
			return true
		}
	}
	return false
}

// SortAndLimit orders results most-recent-first, breaking timestamp ties by
// key so equal inputs always produce equal output, then truncates. Truncation
// happens after sorting: a limit of k always yields the k most recent
// matches, never an arbitrary k.
func SortAndLimit(results []models.Metadata, limit int) []models.Metadata {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Timestamp != results[j].Timestamp {
			return results[i].Timestamp > results[j].Timestamp
		}
		return results[i].Key < results[j].Key
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
