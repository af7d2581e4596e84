// Package crawler drives a multi-page crawl of a listing that only advances
// by clicking its next-page control. Every click reloads the page, so the
// crawl is a state machine persisted in the session: Resume is called on
// every page load and runs one cycle while the fetching flag is set.
package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/scraper"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/session"
)

const (
	// DefaultNextSelector matches the next-page button of the listing
	DefaultNextSelector = `input[name="fwListNaviBtnNext"]`
	// DefaultPageDelay lets the host page's own click debounce settle
	DefaultPageDelay = time.Second
)

// Page is the currently loaded document and the navigation it offers.
// Click and Reload replace the document; the crawl treats each as a new
// page load.
type Page interface {
	Document() *goquery.Document
	Click(ctx context.Context, control *goquery.Selection) error
	Reload(ctx context.Context) error
}

// Reporter receives user-facing progress of the crawl
type Reporter interface {
	// Progress is shown while the page is being left, with the running total
	Progress(total int)
	// Finished reports the final count once the last page was scraped
	Finished(total int)
}

// Outcome of one fetch cycle
type Outcome int

const (
	// Advanced means the next page was requested and the crawl continues
	Advanced Outcome = iota
	// Finished means the last page was scraped and the page reloaded
	Finished
)

func (o Outcome) String() string {
	if o == Finished {
		return "finished"
	}
	return "advanced"
}

// Options configures an Accumulator
type Options struct {
	NextSelector string
	Delay        time.Duration
	Logger       *zap.SugaredLogger
}

// Accumulator is the pagination state machine
type Accumulator struct {
	state    *session.State
	page     Page
	reporter Reporter
	next     string
	delay    time.Duration
	log      *zap.SugaredLogger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates an Accumulator over the given state, page and reporter
func New(state *session.State, page Page, reporter Reporter, opts Options) *Accumulator {
	if opts.NextSelector == "" {
		opts.NextSelector = DefaultNextSelector
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Accumulator{
		state:    state,
		page:     page,
		reporter: reporter,
		next:     opts.NextSelector,
		delay:    opts.Delay,
		log:      opts.Logger,
		sleep:    sleepContext,
	}
}

// Start begins a new crawl from the current page, discarding previously
// accumulated items.
func (a *Accumulator) Start(ctx context.Context) (Outcome, error) {
	if err := a.state.SetFetching(ctx, true); err != nil {
		return 0, errors.Wrap(err, "failed to start crawl")
	}
	if err := a.state.ResetItems(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to start crawl")
	}
	a.log.Infow("Crawl started")
	return a.Cycle(ctx)
}

// Resume runs one cycle if a crawl is in progress. The second return value
// reports whether a cycle ran.
func (a *Accumulator) Resume(ctx context.Context) (Outcome, bool, error) {
	fetching, err := a.state.Fetching(ctx)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to read crawl state")
	}
	if !fetching {
		return 0, false, nil
	}
	outcome, err := a.Cycle(ctx)
	return outcome, true, err
}

// Cycle scrapes the current page into the session and moves on: to the next
// page when its control is present and enabled, otherwise it ends the crawl
// and reloads the page.
func (a *Accumulator) Cycle(ctx context.Context) (Outcome, error) {
	doc := a.page.Document()

	items, err := scraper.ScrapePage(doc)
	if err != nil {
		return 0, errors.Wrap(err, "failed to scrape page")
	}
	total, err := a.state.Append(ctx, items)
	if err != nil {
		return 0, errors.Wrap(err, "failed to store scraped items")
	}
	a.log.Infow("Page scraped", "count", len(items), "total", total)
	a.reporter.Progress(total)

	if control := a.nextControl(doc); control != nil {
		if err := a.sleep(ctx, a.delay); err != nil {
			return 0, err
		}
		if err := a.page.Click(ctx, control); err != nil {
			return 0, errors.Wrap(err, "failed to open next page")
		}
		return Advanced, nil
	}

	if err := a.state.SetFetching(ctx, false); err != nil {
		return 0, errors.Wrap(err, "failed to finish crawl")
	}
	a.log.Infow("Crawl finished", "total", total)
	a.reporter.Finished(total)

	if err := a.page.Reload(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to reload page")
	}
	return Finished, nil
}

// nextControl returns the enabled next-page control, or nil on the last page
func (a *Accumulator) nextControl(doc *goquery.Document) *goquery.Selection {
	control := doc.Find(a.next).First()
	if control.Length() == 0 {
		return nil
	}
	if _, disabled := control.Attr("disabled"); disabled {
		return nil
	}
	return control
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
