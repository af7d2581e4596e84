package host

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FormValues collects the successful controls of form as a browser would
// when submitter is clicked. Only the clicked submit control contributes its
// own name and value.
func FormValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}

	form.Find("input, select, textarea").Each(func(i int, field *goquery.Selection) {
		name, ok := field.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := field.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(field) {
		case "select":
			addSelected(values, name, field)
		case "textarea":
			values.Add(name, field.Text())
		default:
			switch strings.ToLower(field.AttrOr("type", "text")) {
			case "submit", "button", "reset", "image", "file":
			case "checkbox", "radio":
				if _, checked := field.Attr("checked"); checked {
					values.Add(name, field.AttrOr("value", "on"))
				}
			default:
				values.Add(name, field.AttrOr("value", ""))
			}
		}
	})

	if submitter != nil && submitter.Length() > 0 {
		if name, ok := submitter.Attr("name"); ok && name != "" {
			if strings.ToLower(submitter.AttrOr("type", "")) == "image" {
				values.Add(name+".x", "0")
				values.Add(name+".y", "0")
			} else {
				values.Add(name, submitter.AttrOr("value", ""))
			}
		}
	}

	return values
}

func addSelected(values url.Values, name string, sel *goquery.Selection) {
	options := sel.Find("option")
	_, multiple := sel.Attr("multiple")

	selected := options.FilterFunction(func(i int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	})
	if selected.Length() == 0 && !multiple {
		selected = options.First()
	}
	if !multiple {
		selected = selected.Last()
	}

	selected.Each(func(i int, o *goquery.Selection) {
		if v, ok := o.Attr("value"); ok {
			values.Add(name, v)
			return
		}
		values.Add(name, strings.TrimSpace(o.Text()))
	})
}
