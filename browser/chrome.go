package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const defaultTimeout = 30 * time.Second

// Chrome is the production Driver, backed by a headless Chrome instance
// driven over the DevTools protocol.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChrome launches a Chrome instance and waits for it to be ready.
// Failure here is the one hard, run-aborting error of the whole system.
func NewChrome(headless bool) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.WindowSize(1440, 900),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Empty Run starts the browser process.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	log.Println("🌐 Browser session started")
	return &Chrome{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

func (c *Chrome) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (c *Chrome) NavigateTo(url string) error {
	return c.run(defaultTimeout, chromedp.Navigate(url))
}

func (c *Chrome) Back() error {
	return c.run(15*time.Second, chromedp.NavigateBack())
}

func (c *Chrome) Click(selector string, timeout time.Duration) error {
	return c.run(timeout, chromedp.Click(selector, chromedp.ByQuery))
}

func (c *Chrome) WaitForSelector(selector string, timeout time.Duration) error {
	return c.run(timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (c *Chrome) QueryAll(selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := c.run(defaultTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{c: c, node: n})
	}
	return els, nil
}

func (c *Chrome) CurrentURL() (string, error) {
	var u string
	err := c.run(10*time.Second, chromedp.Location(&u))
	return u, err
}

func (c *Chrome) Title() (string, error) {
	var t string
	err := c.run(10*time.Second, chromedp.Title(&t))
	return t, err
}

func (c *Chrome) InnerText(scope string) (string, error) {
	var s string
	err := c.run(defaultTimeout, chromedp.Text(scope, &s, chromedp.ByQuery))
	return s, err
}

func (c *Chrome) HTML(scope string) (string, error) {
	var s string
	err := c.run(defaultTimeout, chromedp.OuterHTML(scope, &s, chromedp.ByQuery))
	return s, err
}

func (c *Chrome) Wait(d time.Duration) {
	time.Sleep(d)
}

func (c *Chrome) Close() error {
	c.cancel()
	c.allocCancel()
	return nil
}

type chromeElement struct {
	c    *Chrome
	node *cdp.Node
}

// eval runs a JS function with `this` bound to the element and unmarshals
// the returned value into out (nil out discards the result).
func (e *chromeElement) eval(fn string, out interface{}) error {
	ctx, cancel := context.WithTimeout(e.c.ctx, 10*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := cdpruntime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if out != nil && res != nil && res.Value != nil {
			return json.Unmarshal(res.Value, out)
		}
		return nil
	}))
}

func (e *chromeElement) Text() (string, error) {
	var s string
	err := e.eval(`function() { return this.innerText || this.textContent || ""; }`, &s)
	return s, err
}

func (e *chromeElement) Attr(name string) (string, error) {
	var s string
	err := e.eval(fmt.Sprintf(`function() { return this.getAttribute(%q) || ""; }`, name), &s)
	return s, err
}

func (e *chromeElement) QueryAll(selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := e.c.run(defaultTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{c: e.c, node: n})
	}
	return els, nil
}

func (e *chromeElement) LeftPx() (float64, error) {
	var left float64
	err := e.eval(`function() { return parseFloat(window.getComputedStyle(this).left) || 0; }`, &left)
	return left, err
}

func (e *chromeElement) Value() (string, error) {
	var s string
	err := e.eval(`function() { return this.value || ""; }`, &s)
	return s, err
}

func (e *chromeElement) SetValue(value string) error {
	fn := fmt.Sprintf(
		`function() { this.value = %q; this.dispatchEvent(new Event("change", { bubbles: true })); }`,
		value)
	return e.eval(fn, nil)
}

func (e *chromeElement) Click() error {
	ctx, cancel := context.WithTimeout(e.c.ctx, 10*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.MouseClickNode(e.node))
}

func (e *chromeElement) ClickJS() error {
	return e.eval(`function() { this.click(); }`, nil)
}

func (e *chromeElement) ScrollIntoView() error {
	return e.eval(`function() { this.scrollIntoView({ block: "center" }); }`, nil)
}
