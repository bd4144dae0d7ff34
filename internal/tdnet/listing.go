package tdnet

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// countBannerRe matches the results-count banner the portal renders above
// the table, e.g. "1～100件 / 全136件".
var countBannerRe = regexp.MustCompile(`\d+～\d+.*全(\d+)件`)

// Page holds the parsed contents of one listing page.
type Page struct {
	Number     int
	Rows       []Disclosure // every parsed row, with or without an XBRL link
	TotalCount int          // from the count banner; 0 when absent or unparsable
}

// XBRLRows returns the subset of rows that link an XBRL package.
func (p *Page) XBRLRows() []Disclosure {
	var out []Disclosure
	for _, r := range p.Rows {
		if r.HasXBRL() {
			out = append(out, r)
		}
	}
	return out
}

// PageURL builds the listing URL for a date (YYYYMMDD) and 1-based page number.
func PageURL(baseURL, date string, page int) string {
	return fmt.Sprintf("%sI_list_%03d_%s.html", baseURL, page, date)
}

// ParseListing parses one listing page. Relative document links are
// resolved against baseURL. Cells are recognized by their class marker,
// not position; the portal spells the history column "kjHistroy".
func ParseListing(r io.Reader, baseURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "listing: parse html")
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, eris.Wrapf(err, "listing: parse base url %q", baseURL)
	}

	page := &Page{}

	if m := countBannerRe.FindStringSubmatch(doc.Text()); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			page.TotalCount = n
		}
	}

	doc.Find("table#main-list-table tr").Each(func(_ int, row *goquery.Selection) {
		var d Disclosure
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			class := cell.AttrOr("class", "")
			switch {
			case strings.Contains(class, "kjTime"):
				d.Time = strings.TrimSpace(cell.Text())
			case strings.Contains(class, "kjCode"):
				d.Code = strings.TrimSpace(cell.Text())
			case strings.Contains(class, "kjName"):
				d.Name = strings.TrimSpace(cell.Text())
			case strings.Contains(class, "kjPlace"):
				d.Place = strings.TrimSpace(cell.Text())
			case strings.Contains(class, "kjHistroy"):
				d.History = strings.TrimSpace(cell.Text())
			case strings.Contains(class, "kjTitle"):
				link := cell.Find("a").First()
				if link.Length() > 0 {
					d.Title = strings.TrimSpace(link.Text())
					if href, ok := link.Attr("href"); ok {
						d.PDFURL = resolveRef(base, href)
					}
				}
			case strings.Contains(class, "kjXbrl"):
				link := cell.Find("a").First()
				if link.Length() > 0 {
					if href, ok := link.Attr("href"); ok {
						d.XBRLURL = resolveRef(base, href)
					}
				}
			}
		})

		if d.Time != "" || d.Code != "" || d.Title != "" {
			page.Rows = append(page.Rows, d)
		}
	})

	return page, nil
}

// resolveRef resolves href against base, falling back to the raw href when
// it does not parse as a URL reference.
func resolveRef(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
