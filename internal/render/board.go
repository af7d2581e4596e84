// Package render reorders the listing tables of a loaded page.
package render

import (
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/dom"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/scraper"
)

// SortedClass is added to every listing moved by Sort
const SortedClass = "hw-sorted-row"

// ErrNoContainer is returned when the page has no listing table whose parent
// could hold the rebuilt listing.
var ErrNoContainer = errors.New("no listing container on page")

// Board is the in-memory listing of the current page
type Board struct {
	parent *html.Node
	jobs   []models.DisplayedJob
}

// NewBoard creates a board over listings that are live in a document. The
// container is the parent of the first listing.
func NewBoard(jobs []models.DisplayedJob) *Board {
	b := &Board{jobs: jobs}
	if len(jobs) > 0 {
		if n := dom.Node(jobs[0].Element); n != nil {
			b.parent = n.Parent
		}
	}
	return b
}

// Reconstruct replaces the contents of the listing container of doc with
// elements rebuilt from persisted items, in persisted order. The page is left
// untouched when any item fails to parse. Everything else
// that shared the container, pagination controls included, is dropped.
func Reconstruct(doc *goquery.Document, items []models.ScrapedItem) (*Board, error) {
	first := dom.Node(doc.Find(scraper.ListingSelector).First())
	if first == nil || first.Parent == nil {
		return nil, ErrNoContainer
	}
	parent := first.Parent

	nodes := make([]*html.Node, 0, len(items))
	for i, item := range items {
		n, err := dom.ParseElement(item.HTML)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to rebuild listing %d", i)
		}
		nodes = append(nodes, n)
	}

	dom.ClearChildren(parent)
	jobs := make([]models.DisplayedJob, 0, len(items))
	for i, n := range nodes {
		dom.AppendChild(parent, n)
		jobs = append(jobs, models.DisplayedJob{Element: doc.FindNodes(n), Data: items[i].Data})
	}

	return &Board{parent: parent, jobs: jobs}, nil
}

// Len returns the number of listings on the board
func (b *Board) Len() int { return len(b.jobs) }

// Jobs returns the listings in their current order
func (b *Board) Jobs() []models.DisplayedJob { return b.jobs }

// Sort orders the listings by key and moves their elements, in that order,
// to the end of the container. Equal keys keep their relative order.
func (b *Board) Sort(key models.SortKey) error {
	less, err := comparator(key)
	if err != nil {
		return err
	}
	if len(b.jobs) == 0 || b.parent == nil {
		return nil
	}

	sort.SliceStable(b.jobs, func(i, j int) bool {
		return less(b.jobs[i].Data, b.jobs[j].Data)
	})

	for _, job := range b.jobs {
		n := dom.Node(job.Element)
		if n == nil {
			continue
		}
		dom.AppendChild(b.parent, n)
		dom.RemoveStyleProperty(job.Element, "display")
		job.Element.AddClass(SortedClass)
	}
	return nil
}

func comparator(key models.SortKey) (func(a, b models.JobRecord) bool, error) {
	switch key {
	case models.SortSalaryMax:
		return func(a, b models.JobRecord) bool { return a.Salary.Max > b.Salary.Max }, nil
	case models.SortSalaryMin:
		return func(a, b models.JobRecord) bool { return a.Salary.Min > b.Salary.Min }, nil
	case models.SortHours:
		return func(a, b models.JobRecord) bool { return a.Hours < b.Hours }, nil
	}
	return nil, errors.Newf("unknown sort key %q", key)
}
