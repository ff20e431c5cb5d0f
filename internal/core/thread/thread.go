// Package thread reconstructs message threads: the transitive closure of
// messages connected through Message-ID, In-Reply-To, and References.
package thread

import (
	"sort"

	"github.com/example/courier/internal/models"
)

// Resolve returns every message in msgs connected to seedID, oldest first.
//
// A single linear pass is not enough: a message M referencing N is missed
// when N is only discovered after M was visited, whatever the physical order
// of the snapshot. Resolve therefore re-scans until a full pass adds no new
// identifiers (fixpoint).
func Resolve(seedID string, msgs []models.Metadata) []models.Metadata {
	known := map[string]bool{seedID: true}
	collected := map[string]bool{}
	var result []models.Metadata

	for {
		grew := false
		for _, m := range msgs {
			if collected[m.Key] || !connected(m, known) {
				continue
			}
			collected[m.Key] = true
			result = append(result, m)
			if absorb(m, known) {
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	// Threads read as a narrative: oldest first, ties by key for
	// deterministic output.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// connected reports whether any of the message's identifiers overlap the
// known set.
func connected(m models.Metadata, known map[string]bool) bool {
	if m.MessageID != "" && known[m.MessageID] {
		return true
	}
	if m.InReplyTo != "" && known[m.InReplyTo] {
		return true
	}
	for _, ref := range m.References {
		if known[ref] {
			return true
		}
	}
	return false
}

// absorb adds the message's identifiers to the known set, reporting whether
// anything new was learned.
func absorb(m models.Metadata, known map[string]bool) bool {
	grew := false
	for _, id := range append([]string{m.MessageID, m.InReplyTo}, m.References...) {
		if id != "" && !known[id] {
			known[id] = true
			grew = true
		}
	}
	return grew
}
