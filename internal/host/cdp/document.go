// Package cdp is a host.Document implementation backed by a live Chrome
// instance over the DevTools protocol. Element handles are tracked through a
// page-side registry keyed by generated ids, so detached nodes (measurement
// probes before insertion) stay reachable between calls.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formfit/formfit/internal/host"
)

// registryScript installs the element registry once per page.
const registryScript = `
	(function() {
		if (!window.__formfit) {
			window.__formfit = { els: {} };
		}
		return true;
	})()`

// Options configures the browser allocation for Open.
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	IgnoreTLSErrors   bool
	Args              []string
	Logger            *zap.Logger
}

// Document drives one page. All evaluations run against the page's chromedp
// context with the configured timeout applied per call.
type Document struct {
	ctx     context.Context
	timeout time.Duration
	log     *zap.Logger
}

// Open allocates a browser, navigates to url, and returns the document plus
// a cancel function that tears the browser down.
func Open(ctx context.Context, url string, opts Options) (*Document, context.CancelFunc, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 90 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.IgnoreTLSErrors {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}
	for _, arg := range opts.Args {
		allocOpts = append(allocOpts, chromedp.Flag(arg, true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		pageCancel()
		allocCancel()
	}

	d := &Document{ctx: pageCtx, timeout: opts.NavigationTimeout, log: log}

	navCtx, navCancel := context.WithTimeout(pageCtx, opts.NavigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("navigating to %s: %w", url, err)
	}

	var ok bool
	if err := d.eval(registryScript, &ok); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("installing element registry: %w", err)
	}
	return d, cancel, nil
}

// eval runs a script in the page and decodes the result. A nil out discards
// the value.
func (d *Document) eval(script string, out interface{}) error {
	opCtx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	var raw json.RawMessage
	err := chromedp.Run(opCtx, chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true)
	}))
	if err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("evaluation timed out after %v: %w", d.timeout, opCtx.Err())
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding evaluation result: %w (payload: %s)", err, string(raw))
	}
	return nil
}

// QuerySelectorAll registers every match in the page-side registry and
// returns handles in document order.
func (d *Document) QuerySelectorAll(selector string) ([]host.Element, error) {
	script := fmt.Sprintf(`
		(function(sel) {
			let nodes;
			try {
				nodes = document.querySelectorAll(sel);
			} catch (e) {
				return { error: String(e) };
			}
			const out = [];
			for (const node of nodes) {
				let id = node.getAttribute('data-formfit-id');
				if (!id || !window.__formfit.els[id]) {
					id = 'q-' + Object.keys(window.__formfit.els).length + '-' + Date.now();
					node.setAttribute('data-formfit-id', id);
					window.__formfit.els[id] = node;
				}
				out.push({ id: id, tag: node.tagName.toLowerCase() });
			}
			return { matches: out };
		})(%s)`, jsEncode(selector))

	var res struct {
		Error   string `json:"error"`
		Matches []struct {
			ID  string `json:"id"`
			Tag string `json:"tag"`
		} `json:"matches"`
	}
	if err := d.eval(script, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, fmt.Errorf("invalid selector %q: %s", selector, res.Error)
	}

	els := make([]host.Element, 0, len(res.Matches))
	for _, m := range res.Matches {
		els = append(els, &Element{doc: d, id: m.ID, tag: m.Tag})
	}
	return els, nil
}

// CreateElement creates a detached element in the page and registers it.
func (d *Document) CreateElement(tag string) host.Element {
	id := uuid.NewString()
	script := fmt.Sprintf(`
		(function(tag, id) {
			const node = document.createElement(tag);
			node.setAttribute('data-formfit-id', id);
			window.__formfit.els[id] = node;
			return true;
		})(%s, %s)`, jsEncode(tag), jsEncode(id))

	var ok bool
	if err := d.eval(script, &ok); err != nil {
		d.log.Warn("failed to create element in page", zap.String("tag", tag), zap.Error(err))
	}
	return &Element{doc: d, id: id, tag: tag}
}

// HTML returns the serialized document, with registry bookkeeping attributes
// stripped.
func (d *Document) HTML() (string, error) {
	script := `
		(function() {
			const clone = document.documentElement.cloneNode(true);
			for (const el of clone.querySelectorAll('[data-formfit-id]')) {
				el.removeAttribute('data-formfit-id');
			}
			return '<!DOCTYPE html>' + clone.outerHTML;
		})()`
	var out string
	if err := d.eval(script, &out); err != nil {
		return "", err
	}
	return out, nil
}

func jsEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
