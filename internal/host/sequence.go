package host

import (
	"context"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fr4nk3nst1ner/hwenhancer/internal/dom"
)

// ErrNoMorePages is returned when the next control is clicked on the last
// page of a sequence.
var ErrNoMorePages = errors.New("no more pages in sequence")

// SequencePage replays a fixed list of saved pages: clicking any control
// moves to the next one, Reload parses the current one again.
type SequencePage struct {
	pages []string
	names []string
	index int
	doc   *goquery.Document

	Clicks  int
	Reloads int
}

// NewSequencePage creates a sequence from page markup
func NewSequencePage(pages ...string) (*SequencePage, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages given")
	}
	s := &SequencePage{pages: pages}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFiles creates a sequence from saved HTML files, in order
func LoadFiles(paths ...string) (*SequencePage, error) {
	pages := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read page %s", p)
		}
		pages = append(pages, string(data))
	}
	s, err := NewSequencePage(pages...)
	if err != nil {
		return nil, err
	}
	s.names = paths
	return s, nil
}

func (s *SequencePage) load() error {
	doc, err := dom.ParseDocumentString(s.pages[s.index])
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Document returns the current page
func (s *SequencePage) Document() *goquery.Document { return s.doc }

// Location names the current page
func (s *SequencePage) Location() string {
	if s.index < len(s.names) {
		return s.names[s.index]
	}
	return ""
}

// Index returns the position of the current page
func (s *SequencePage) Index() int { return s.index }

// Click moves to the next page
func (s *SequencePage) Click(ctx context.Context, control *goquery.Selection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.index+1 >= len(s.pages) {
		return ErrNoMorePages
	}
	s.Clicks++
	s.index++
	return s.load()
}

// Reload parses the current page again
func (s *SequencePage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Reloads++
	return s.load()
}
