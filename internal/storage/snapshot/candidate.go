package snapshot

import (
	"strings"
	"time"

	"github.com/yndnr/snapbrowse/internal/core/domain"
)

// Candidate is a snapshot directory name with its parsed timestamp.
type Candidate struct {
	Name      string
	Timestamp time.Time
}

// ParseCandidate interprets name as a snapshot directory name for suffix.
//
// It returns ok=false with a nil error when name is not snapshot-shaped
// (no underscore, or remainder without the suffix). An empty suffix matches
// every remainder. A snapshot-shaped name whose timestamp prefix is not valid
// RFC 3339 with an offset yields an error wrapping domain.ErrTimestampParse.
func ParseCandidate(name, suffix string) (Candidate, bool, error) {
	prefix, rest, found := strings.Cut(name, "_")
	if !found {
		return Candidate{}, false, nil
	}
	if !strings.HasSuffix(rest, suffix) {
		return Candidate{}, false, nil
	}

	ts, err := time.Parse(time.RFC3339, prefix)
	if err != nil {
		return Candidate{}, false, domain.ErrTimestampParse.Wrap(name, err)
	}
	return Candidate{Name: name, Timestamp: ts}, true, nil
}

// NewerThan reports whether c should replace o as the latest snapshot.
// Later instants win; among equal instants (different offsets can name the
// same moment) the lexicographically greater name wins.
func (c Candidate) NewerThan(o Candidate) bool {
	if c.Timestamp.Equal(o.Timestamp) {
		return c.Name > o.Name
	}
	return c.Timestamp.After(o.Timestamp)
}
