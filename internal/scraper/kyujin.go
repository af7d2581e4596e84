package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/dom"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/models"
	"github.com/fr4nk3nst1ner/hwenhancer/internal/utils"
)

const (
	// ListingSelector matches the listing tables of a Hello Work result page
	ListingSelector = "table.kyujin"

	wageMarker  = "賃金"
	hoursMarker = "就業時間"
)

// ExtractRecord builds a record from one listing table.
//
// Every row contributes its first two cells as a label/value pair. A label
// containing 賃金 captures the value as wage text, otherwise a label
// containing 就業時間 captures it as hours text. When several rows match, the
// last one wins. A table where neither captured text is non-empty is not a
// listing and the second return value is false.
func ExtractRecord(table *goquery.Selection) (models.JobRecord, bool) {
	var wageText, hoursText string

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())

		switch {
		case strings.Contains(label, wageMarker):
			wageText = value
		case strings.Contains(label, hoursMarker):
			hoursText = value
		}
	})

	if wageText == "" && hoursText == "" {
		return models.JobRecord{}, false
	}

	return models.JobRecord{
		Salary: utils.ParseWage(wageText),
		Hours:  utils.ParseShiftDuration(hoursText),
	}, true
}

// isListing is the cheap text check run before walking a table's rows
func isListing(table *goquery.Selection) bool {
	return strings.Contains(table.Text(), wageMarker)
}

// ScrapePage extracts every listing on the page in document order, keeping
// each table's markup so it can be rebuilt after the page is gone.
func ScrapePage(doc *goquery.Document) ([]models.ScrapedItem, error) {
	var results []models.ScrapedItem
	var serr error

	doc.Find(ListingSelector).EachWithBreak(func(i int, table *goquery.Selection) bool {
		if !isListing(table) {
			return true
		}
		record, ok := ExtractRecord(table)
		if !ok {
			return true
		}
		markup, err := dom.OuterHTML(table)
		if err != nil {
			serr = err
			return false
		}
		results = append(results, models.ScrapedItem{HTML: markup, Data: record})
		return true
	})

	if serr != nil {
		return nil, serr
	}
	return results, nil
}

// CollectListings returns the live listing tables of the page with their
// records, for sorting the page in place.
func CollectListings(doc *goquery.Document) []models.DisplayedJob {
	var jobs []models.DisplayedJob

	doc.Find(ListingSelector).Each(func(i int, table *goquery.Selection) {
		if !isListing(table) {
			return
		}
		if record, ok := ExtractRecord(table); ok {
			jobs = append(jobs, models.DisplayedJob{Element: table, Data: record})
		}
	})

	return jobs
}
