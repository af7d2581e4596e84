// Package host loads listing pages and performs the navigation the page
// offers, standing in for the browser tab the enhancer runs in.
package host

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/client"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/dom"
)

// ErrNotNavigable is returned when a clicked control neither sits in a form
// nor links anywhere.
var ErrNotNavigable = errors.New("control does not navigate")

type request struct {
	method string
	url    string
	body   string
}

// HTTPPage is a page fetched over HTTP. Clicking a submit control posts its
// form; clicking a link follows it; Reload re-issues the last request.
type HTTPPage struct {
	client *http.Client
	log    *zap.SugaredLogger
	doc    *goquery.Document
	loc    *url.URL
	last   request
}

// NewHTTPPage creates a page with no document loaded yet
func NewHTTPPage(httpClient *http.Client, log *zap.SugaredLogger) *HTTPPage {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTPPage{client: httpClient, log: log}
}

// Open loads rawURL with a GET request
func (p *HTTPPage) Open(ctx context.Context, rawURL string) error {
	return p.do(ctx, request{method: http.MethodGet, url: rawURL})
}

// Document returns the current document
func (p *HTTPPage) Document() *goquery.Document { return p.doc }

// Location returns the URL of the current document
func (p *HTTPPage) Location() string {
	if p.loc == nil {
		return ""
	}
	return p.loc.String()
}

// Reload fetches the current page again, discarding local changes
func (p *HTTPPage) Reload(ctx context.Context) error {
	if p.last.url == "" {
		return errors.New("no page loaded")
	}
	return p.do(ctx, p.last)
}

// Click activates control the way a browser would on a plain HTML page
func (p *HTTPPage) Click(ctx context.Context, control *goquery.Selection) error {
	if goquery.NodeName(control) == "a" {
		href, ok := control.Attr("href")
		if !ok {
			return ErrNotNavigable
		}
		target, err := p.resolve(href)
		if err != nil {
			return err
		}
		return p.do(ctx, request{method: http.MethodGet, url: target})
	}

	form := p.formOf(control)
	if form.Length() == 0 {
		return ErrNotNavigable
	}

	action, _ := form.Attr("action")
	if v, ok := control.Attr("formaction"); ok {
		action = v
	}
	target, err := p.resolve(action)
	if err != nil {
		return err
	}

	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", http.MethodGet)))
	if v, ok := control.Attr("formmethod"); ok {
		method = strings.ToUpper(strings.TrimSpace(v))
	}

	values := FormValues(form, control)
	if method == http.MethodPost {
		return p.do(ctx, request{method: http.MethodPost, url: target, body: values.Encode()})
	}

	u, err := url.Parse(target)
	if err != nil {
		return errors.Wrap(err, "invalid form action")
	}
	u.RawQuery = values.Encode()
	return p.do(ctx, request{method: http.MethodGet, url: u.String()})
}

func (p *HTTPPage) formOf(control *goquery.Selection) *goquery.Selection {
	if id, ok := control.Attr("form"); ok && p.doc != nil {
		return p.doc.Find("form").FilterFunction(func(i int, s *goquery.Selection) bool {
			return s.AttrOr("id", "") == id
		}).First()
	}
	return control.Closest("form")
}

func (p *HTTPPage) resolve(ref string) (string, error) {
	if p.loc == nil {
		return ref, nil
	}
	u, err := p.loc.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL %q", ref)
	}
	return u.String(), nil
}

func (p *HTTPPage) do(ctx context.Context, r request) error {
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	for key, values := range client.GetRandomHeaders() {
		req.Header[key] = values
	}
	if r.method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if p.loc != nil {
		req.Header.Set("Referer", p.loc.String())
	}

	p.log.Debugw("Loading page", "method", r.method, "url", r.url)
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("received non-200 status code: %d", resp.StatusCode)
	}

	raw, err := client.ReadResponseBody(resp)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}
	decoded, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	doc, err := dom.ParseDocument(decoded)
	if err != nil {
		return err
	}

	p.doc = doc
	p.loc = resp.Request.URL
	if resp.Request.Method == http.MethodGet {
		p.last = request{method: http.MethodGet, url: resp.Request.URL.String()}
	} else {
		p.last = r
	}
	p.log.Debugw("Page loaded", "url", p.Location())
	return nil
}
