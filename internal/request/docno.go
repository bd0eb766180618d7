package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocNoSource provides the highest existing document number for a
// series and two-digit-year combination.
type DocNoSource interface {
	LatestDocNo(series, yearToken string) (string, bool, error)
}

// DocNoGenerator issues sequential document numbers of the form
// "{series}-{YY}-{00001}", scoped per series and year. Generation is
// read-then-write; the unique index on doc_no turns a concurrent collision
// into a conflict error rather than a silent duplicate.
type DocNoGenerator struct {
	source DocNoSource
	now    func() time.Time
}

func NewDocNoGenerator(source DocNoSource) *DocNoGenerator {
	return &DocNoGenerator{source: source, now: time.Now}
}

func (g *DocNoGenerator) Next(series string) (string, error) {
	yearToken := g.now().Format("06")

	latest, found, err := g.source.LatestDocNo(series, yearToken)
	if err != nil {
		return "", err
	}

	next := 1
	if found {
		// A malformed existing number silently restarts the sequence at 1.
		if n, ok := parseDocNoSuffix(latest); ok {
			next = n + 1
		}
	}

	return fmt.Sprintf("%s-%s-%05d", series, yearToken, next), nil
}

// parseDocNoSuffix reads the third dash-delimited segment as the sequence
// number.
func parseDocNoSuffix(docNo string) (int, bool) {
	parts := strings.Split(docNo, "-")
	if len(parts) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
