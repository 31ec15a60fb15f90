package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateParser accepts ISO dates as well as phrases like "next friday".
type dateParser struct {
	w   *when.Parser
	now func() time.Time
}

func newDateParser(now func() time.Time) *dateParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &dateParser{w: w, now: now}
}

// Parse returns the instant described by input in UTC.
func (p *dateParser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	r, err := p.w.Parse(strings.ToLower(input), p.now())
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse date %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize date %q", input)
	}
	return r.Time.UTC(), nil
}
