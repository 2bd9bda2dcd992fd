package scraper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"court-sniper/browser"
	"court-sniper/types"
)

// fakeEl is a scriptable element handle.
type fakeEl struct {
	text     string
	attrs    map[string]string
	left     float64
	value    string
	children map[string][]*fakeEl
	onClick  func()
	clickErr error
}

func (e *fakeEl) Text() (string, error)         { return e.text, nil }
func (e *fakeEl) Attr(name string) (string, error) { return e.attrs[name], nil }
func (e *fakeEl) LeftPx() (float64, error)      { return e.left, nil }
func (e *fakeEl) Value() (string, error)        { return e.value, nil }
func (e *fakeEl) ScrollIntoView() error         { return nil }

func (e *fakeEl) SetValue(v string) error {
	e.value = v
	return nil
}

func (e *fakeEl) QueryAll(selector string) ([]browser.Element, error) {
	return toElements(e.children[selector]), nil
}

func (e *fakeEl) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeEl) ClickJS() error { return e.Click() }

func toElements(els []*fakeEl) []browser.Element {
	out := make([]browser.Element, 0, len(els))
	for _, e := range els {
		out = append(out, e)
	}
	return out
}

// fakeDriver simulates the booking site as a three-state machine:
// landing page -> court list -> court detail.
type fakeDriver struct {
	baseURL string
	url     string
	state   string // "landing", "list", "detail"
	detail  types.CourtID

	// courts holds the labels shown on the list page, e.g. "Court 01".
	courts []string
	// misdirect maps a requested court to the court whose detail page
	// actually loads, simulating the UI race the verifier must catch.
	misdirect map[types.CourtID]types.CourtID
	// backWorks controls whether history-back returns to the list.
	backWorks bool
	// listBroken makes every list visit after the first come up empty,
	// so both recovery strategies fail.
	listBroken bool

	// cells is the schedule grid per court.
	cells map[types.CourtID][]*fakeEl
	// selects are the page-size dropdowns visible on the list page.
	selects []*fakeEl

	listVisits int
}

func newFakeDriver(courts ...string) *fakeDriver {
	return &fakeDriver{
		baseURL:   "https://recreation.example.com/tennis/court-booking/",
		backWorks: true,
		courts:    courts,
		misdirect: make(map[types.CourtID]types.CourtID),
		cells:     make(map[types.CourtID][]*fakeEl),
	}
}

func (d *fakeDriver) openList() {
	d.listVisits++
	d.state = "list"
	d.url = d.baseURL + "#list"
}

func (d *fakeDriver) listShowsCourts() bool {
	return !d.listBroken || d.listVisits <= 1
}

func (d *fakeDriver) NavigateTo(url string) error {
	d.url = url
	d.state = "landing"
	return nil
}

func (d *fakeDriver) Back() error {
	if d.backWorks && d.state == "detail" {
		d.openList()
	}
	return nil
}

func (d *fakeDriver) Click(selector string, timeout time.Duration) error {
	return errors.New("no such element")
}

func (d *fakeDriver) WaitForSelector(selector string, timeout time.Duration) error {
	if selector == "#scheduler" && d.state == "detail" {
		return nil
	}
	return fmt.Errorf("timeout waiting for %s", selector)
}

func (d *fakeDriver) QueryAll(selector string) ([]browser.Element, error) {
	switch selector {
	case "select":
		return toElements(d.selects), nil

	case "a":
		if d.state == "landing" {
			book := &fakeEl{text: "Book a Court", onClick: d.openList}
			return []browser.Element{book}, nil
		}

	case "li[role='listitem'], [role='listitem'], li":
		if d.state == "list" && d.listShowsCourts() {
			return toElements(d.listItems()), nil
		}

	case "table":
		if d.state == "detail" {
			return []browser.Element{&fakeEl{}}, nil
		}

	case "h1, h2, h3, h4, h5, h6":
		if d.state == "detail" {
			return []browser.Element{&fakeEl{text: string(d.detail) + " Weekly Schedule"}}, nil
		}

	case "#scheduler [role='gridcell']":
		if d.state == "detail" {
			return toElements(d.cells[d.detail]), nil
		}
	}
	return nil, nil
}

func (d *fakeDriver) listItems() []*fakeEl {
	items := make([]*fakeEl, 0, len(d.courts))
	for _, label := range d.courts {
		requested := types.NormalizeCourt(label)
		choose := &fakeEl{
			text:  "Choose",
			attrs: map[string]string{"onclick": "onChooseClick()"},
			onClick: func() {
				target := requested
				if actual, ok := d.misdirect[requested]; ok {
					target = actual
				}
				d.state = "detail"
				d.detail = target
				d.url = d.baseURL + "perfectmind/facility/court-" + target.ShortNum()
			},
		}
		items = append(items, &fakeEl{
			text: fmt.Sprintf("Choose %s Read more", label),
			children: map[string][]*fakeEl{
				"a[aria-label*='linkText'], a.pm-confirm-button, a[onclick*='onChooseClick']": {choose},
			},
		})
	}
	return items
}

func (d *fakeDriver) CurrentURL() (string, error) { return d.url, nil }

func (d *fakeDriver) Title() (string, error) {
	if d.state == "detail" {
		return string(d.detail) + " - UBC Recreation", nil
	}
	return "UBC Recreation", nil
}

func (d *fakeDriver) InnerText(scope string) (string, error) {
	switch d.state {
	case "list":
		if !d.listShowsCourts() {
			return "No results found", nil
		}
		return strings.Join(d.courts, "\n"), nil
	case "detail":
		return string(d.detail) + " weekly schedule", nil
	}
	return "Welcome! Ready to play? Reserve online.", nil
}

func (d *fakeDriver) HTML(scope string) (string, error) {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	if d.state == "list" && d.listShowsCourts() {
		for _, label := range d.courts {
			b.WriteString("<li>Choose " + label + " Read more</li>")
		}
	}
	b.WriteString("</ul></body></html>")
	return b.String(), nil
}

func (d *fakeDriver) Wait(time.Duration) {}
func (d *fakeDriver) Close() error       { return nil }

// bookableCell builds a gridcell containing one time-range label.
func bookableCell(title, text string, left float64) *fakeEl {
	span := &fakeEl{text: text, attrs: map[string]string{"title": title}}
	return &fakeEl{
		left:     left,
		attrs:    map[string]string{},
		children: map[string][]*fakeEl{"span[title]": {span}},
	}
}
