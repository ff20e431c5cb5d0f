// Package consensus reduces per-member panel votes to a single verdict under
// a configured decision model. It is pure logic: callers supply the panel
// definition and the decision-tagged messages found in the panel's queue.
package consensus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/courier/internal/models"
)

// ErrUnknownDecisionModel is returned for a decision-model tag that is not
// one of the supported variants. Evaluation fails closed: there is no
// fallback policy.
var ErrUnknownDecisionModel = errors.New("unknown decision model")

// DecisionModel selects how per-member votes reduce to a verdict.
type DecisionModel int

const (
	// Unanimous requires every voting member to cast the same vote.
	Unanimous DecisionModel = iota
	// Majority requires strictly more than half of the voting members.
	Majority
	// PrimaryDecides makes the first-listed panel member authoritative.
	PrimaryDecides
)

// String returns the configuration tag for the model.
func (m DecisionModel) String() string {
	switch m {
	case Unanimous:
		return "unanimous"
	case Majority:
		return "majority"
	case PrimaryDecides:
		return "primary-decides"
	default:
		return "unknown"
	}
}

// ParseDecisionModel maps a configuration tag to a DecisionModel.
// "consensus" is accepted as a legacy alias for unanimous.
func ParseDecisionModel(tag string) (DecisionModel, error) {
	switch tag {
	case "unanimous", "consensus":
		return Unanimous, nil
	case "majority":
		return Majority, nil
	case "primary-decides":
		return PrimaryDecides, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDecisionModel, tag)
	}
}

// Vote is a single member's decision signal.
type Vote string

const (
	Approve         Vote = "approve"
	Reject          Vote = "reject"
	RequestRevision Vote = "request-revision"
)

// Panel is a named group of members collaborating on one artifact. The first
// member is the primary.
type Panel struct {
	Name     string
	Members  []string
	RoleType string
	Model    DecisionModel
}

// Primary returns the first-listed member, or "" for an empty panel.
func (p Panel) Primary() string {
	if len(p.Members) == 0 {
		return ""
	}
	return p.Members[0]
}

// Result is the outcome of a consensus evaluation. Reached is false for the
// explicit NoConsensus outcome, which is a normal result, not an error.
type Result struct {
	Reached bool
	Verdict Vote
	// Votes is the final one-vote-per-member tally the verdict was derived
	// from, keyed by member name.
	Votes map[string]Vote
}

// ExtractVote derives a vote from a free-text subject line.
//
// The keyword priority approve > reject > revision|clarification is the
// binding contract: subjects containing several keywords resolve by that
// order alone. This is a heuristic over free text, not a structured field;
// replacing it with an explicit vote header is tracked as a schema change.
func ExtractVote(subject string) (Vote, bool) {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "approve"):
		return Approve, true
	case strings.Contains(s, "reject"):
		return Reject, true
	case strings.Contains(s, "revision"), strings.Contains(s, "clarification"):
		return RequestRevision, true
	default:
		return "", false
	}
}

// MemberName derives the member identity from a sender address: the portion
// before '@', or the whole string when there is none.
func MemberName(from string) string {
	if i := strings.Index(from, "@"); i >= 0 {
		return from[:i]
	}
	return from
}

// CollectVotes builds the per-member vote map from decision-tagged messages.
// When a member has several decision messages the most recent one wins;
// equal timestamps fall back to key ordering so the outcome is deterministic.
func CollectVotes(msgs []models.Metadata) map[string]Vote {
	votes := map[string]Vote{}
	latest := map[string]models.Metadata{}

	for _, m := range msgs {
		vote, ok := ExtractVote(m.Subject)
		if !ok {
			continue
		}
		member := MemberName(m.From)
		if member == "" {
			continue
		}
		if prev, seen := latest[member]; seen && !newer(m, prev) {
			continue
		}
		latest[member] = m
		votes[member] = vote
	}

	return votes
}

func newer(a, b models.Metadata) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	return a.Key > b.Key
}

// Decide applies the panel's decision model to the final vote map. Zero
// votes always yield NoConsensus, never an error.
func Decide(panel Panel, votes map[string]Vote) Result {
	result := Result{Votes: votes}
	if len(votes) == 0 {
		return result
	}

	switch panel.Model {
	case Unanimous:
		var verdict Vote
		for _, v := range votes {
			if verdict == "" {
				verdict = v
			} else if v != verdict {
				return result
			}
		}
		result.Reached = true
		result.Verdict = verdict

	case Majority:
		counts := map[Vote]int{}
		for _, v := range votes {
			counts[v]++
		}
		for v, n := range counts {
			// Strictly more than half: exact ties are NoConsensus.
			if n*2 > len(votes) {
				result.Reached = true
				result.Verdict = v
				break
			}
		}

	case PrimaryDecides:
		if v, ok := votes[panel.Primary()]; ok {
			result.Reached = true
			result.Verdict = v
		}
	}

	return result
}
