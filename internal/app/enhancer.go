// Package app wires the enhancer together the way the page script runs:
// every page load goes through OnLoad, which either continues a crawl in
// progress or sets the listing up for sorting.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/crawler"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/dom"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/render"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/scraper"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/session"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/utils"
)

// Messages shown to the user
const (
	msgReady        = "準備完了"
	msgNoListings   = "求人情報が見つかりませんでした。"
	msgParsed       = "取得完了: %d件"
	msgShowingAll   = "全データ表示中: %d件"
	msgSorting      = "ソート中..."
	msgSorted       = "ソート完了"
	msgNothingSort  = "ソートする求人がありません"
	msgConfirmCrawl = "全ページを自動で巡回します。完了するまで他の操作をしないでください。よろしいですか？"
)

// UI is the user-facing side of the enhancer
type UI interface {
	crawler.Reporter
	Status(msg string)
	Confirm(msg string) bool
	ShowControls(summary string) error
}

// Enhancer is one page session of the listing enhancer
type Enhancer struct {
	page  crawler.Page
	state *session.State
	ui    UI
	acc   *crawler.Accumulator
	board *render.Board
	log   *zap.SugaredLogger
}

// New creates an enhancer for the given page
func New(page crawler.Page, state *session.State, ui UI, opts crawler.Options) *Enhancer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Enhancer{
		page:  page,
		state: state,
		ui:    ui,
		acc:   crawler.New(state, page, ui, opts),
		log:   opts.Logger,
	}
}

// Board returns the listing currently set up for sorting, or nil
func (e *Enhancer) Board() *render.Board { return e.board }

// Document returns the current page document
func (e *Enhancer) Document() *goquery.Document { return e.page.Document() }

// OnLoad is run for every page load. While a crawl is in progress it runs
// one fetch cycle, which always navigates away; navigated is then true and
// the caller must treat the next document as a fresh load. Otherwise the
// listing is prepared: stored crawl results, if any, replace the page's own.
func (e *Enhancer) OnLoad(ctx context.Context) (navigated bool, err error) {
	e.board = nil

	outcome, ran, err := e.acc.Resume(ctx)
	if err != nil {
		return false, err
	}
	if ran {
		e.log.Debugw("Fetch cycle done", "outcome", outcome.String())
		return true, nil
	}

	e.ui.Status(msgReady)
	items, err := e.state.Items(ctx)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		if err := e.renderStored(items); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Run processes page loads until one does not navigate
func (e *Enhancer) Run(ctx context.Context) error {
	for {
		navigated, err := e.OnLoad(ctx)
		if err != nil {
			return err
		}
		if !navigated {
			return nil
		}
	}
}

// StartAutoFetch asks for confirmation, then crawls every page from the
// current one and finally shows the complete listing. Declining changes
// nothing and reports false.
func (e *Enhancer) StartAutoFetch(ctx context.Context) (bool, error) {
	if !e.ui.Confirm(msgConfirmCrawl) {
		return false, nil
	}
	if _, err := e.acc.Start(ctx); err != nil {
		return true, err
	}
	return true, e.Run(ctx)
}

// ParseCurrentPage sets up the listings of the current page, in place, for
// sorting, and returns how many there are.
func (e *Enhancer) ParseCurrentPage() (int, error) {
	jobs := scraper.CollectListings(e.page.Document())
	if len(jobs) == 0 {
		e.ui.Status(msgNoListings)
		return 0, nil
	}
	for _, job := range jobs {
		e.log.Debugw("Listing found",
			"id", job.Element.AttrOr("id", ""),
			"wage", utils.FormatWageRange(job.Data.Salary),
			"hours", utils.FormatDuration(job.Data.Hours))
	}
	e.board = render.NewBoard(jobs)
	e.ui.Status(fmt.Sprintf(msgParsed, len(jobs)))
	if err := e.ui.ShowControls(fmt.Sprintf(msgParsed, len(jobs))); err != nil {
		return len(jobs), errors.Wrap(err, "failed to show controls")
	}
	return len(jobs), nil
}

// RenderStored replaces the page's listing with the stored crawl results
func (e *Enhancer) RenderStored(ctx context.Context) error {
	items, err := e.state.Items(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return e.renderStored(items)
}

func (e *Enhancer) renderStored(items []models.ScrapedItem) error {
	board, err := render.Reconstruct(e.page.Document(), items)
	if errors.Is(err, render.ErrNoContainer) {
		e.log.Warnw("Stored listings not shown, page has no listing container", "count", len(items))
		return nil
	}
	if err != nil {
		return err
	}
	e.board = board
	e.ui.Status(fmt.Sprintf(msgShowingAll, len(items)))
	if err := e.ui.ShowControls(fmt.Sprintf(msgShowingAll, len(items))); err != nil {
		return errors.Wrap(err, "failed to show controls")
	}
	return nil
}

// Sort reorders the prepared listing
func (e *Enhancer) Sort(key models.SortKey) error {
	e.ui.Status(msgSorting)
	if e.board == nil || e.board.Len() == 0 {
		e.ui.Status(msgNothingSort)
		return nil
	}
	if err := e.board.Sort(key); err != nil {
		return err
	}
	e.ui.Status(msgSorted)
	return nil
}

// Reset discards the stored crawl results, stops a crawl left in progress
// and reloads the page.
func (e *Enhancer) Reset(ctx context.Context) error {
	if err := e.state.Discard(ctx); err != nil {
		return err
	}
	if err := e.page.Reload(ctx); err != nil {
		return errors.Wrap(err, "failed to reload page")
	}
	return e.Run(ctx)
}

// EndSession forgets everything stored for this session
func (e *Enhancer) EndSession(ctx context.Context) error {
	e.board = nil
	return e.state.End(ctx)
}

// WriteHTML renders the current document
func (e *Enhancer) WriteHTML(w io.Writer) error {
	return dom.Render(w, e.page.Document())
}
