package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const dateLayout = "2006-01-02"

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDate accepts YYYY-MM-DD or natural language such as "next friday"
// or "in 3 days", resolved against now.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, now.Location()); err == nil {
		return t, nil
	}

	r, err := dateParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or a phrase like \"next friday\"", s)
	}
	return r.Time, nil
}

// parseOptionalDate returns nil for an empty string
func parseOptionalDate(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
