package scraper

import (
	"errors"
	"strings"
	"time"

	"court-sniper/browser"
)

var errWaitTimeout = errors.New("wait budget exhausted")

// retry polls op every interval until it reports done or maxWait elapses.
// The last error op returned is surfaced on timeout so the caller sees the
// actual failure instead of a bare deadline.
func retry(op func() (bool, error), interval, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	var lastErr error
	for {
		done, err := op()
		if done {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if time.Now().After(deadline) {
			if lastErr != nil {
				return lastErr
			}
			return errWaitTimeout
		}
		time.Sleep(interval)
	}
}

// probe is one entry of an ordered "try these selectors" heuristic.
// Text narrows the candidates to elements whose text contains it; an empty
// Text accepts the first element the selector yields.
type probe struct {
	Selector string
	Text     string
}

// resolveProbe evaluates probes in order and returns the first element that
// matches. Heuristics stay data, control flow stays here.
func resolveProbe(d browser.Driver, probes []probe) (browser.Element, bool) {
	for _, p := range probes {
		els, err := d.QueryAll(p.Selector)
		if err != nil {
			continue
		}
		for _, el := range els {
			if p.Text == "" {
				return el, true
			}
			text, err := el.Text()
			if err != nil {
				continue
			}
			if strings.Contains(strings.ToLower(text), strings.ToLower(p.Text)) {
				return el, true
			}
		}
	}
	return nil, false
}

// anyPresent reports whether at least one of the selectors matches anything
// on the current page.
func anyPresent(d browser.Driver, selectors []string) bool {
	for _, sel := range selectors {
		els, err := d.QueryAll(sel)
		if err == nil && len(els) > 0 {
			return true
		}
	}
	return false
}
