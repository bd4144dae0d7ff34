package tdnet

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingRow is a fixture row for building portal listing pages in tests.
type listingRow struct {
	Time    string
	Code    string
	Name    string
	Title   string
	PDFHref string
	ZIPHref string
	Place   string
	History string
}

// buildListingHTML renders a listing page the way the portal does: an
// id'd table of class-marked cells, no tbody in the source, and a count
// banner when total > 0.
func buildListingHTML(total int, rows []listingRow) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	if total > 0 {
		b.WriteString(fmt.Sprintf(`<div class="kaijiSum">1～%d件&nbsp;/&nbsp;全%d件</div>`, len(rows), total))
		b.WriteString("\n")
	}
	b.WriteString(`<table id="main-list-table">` + "\n")
	for _, r := range rows {
		b.WriteString("<tr>\n")
		b.WriteString(fmt.Sprintf(`<td class="kjTime">%s</td>`, r.Time))
		b.WriteString(fmt.Sprintf(`<td class="kjCode">%s</td>`, r.Code))
		b.WriteString(fmt.Sprintf(`<td class="kjName">%s</td>`, r.Name))
		if r.PDFHref != "" {
			b.WriteString(fmt.Sprintf(`<td class="kjTitle"><a href="%s" target="_blank">%s</a></td>`, r.PDFHref, r.Title))
		} else {
			b.WriteString(fmt.Sprintf(`<td class="kjTitle">%s</td>`, r.Title))
		}
		if r.ZIPHref != "" {
			b.WriteString(fmt.Sprintf(`<td class="kjXbrl"><div class="xbrl-mask"><a href="%s"><img src="xbrl.gif"/></a></div></td>`, r.ZIPHref))
		} else {
			b.WriteString(`<td class="kjXbrl"></td>`)
		}
		b.WriteString(fmt.Sprintf(`<td class="kjPlace">%s</td>`, r.Place))
		b.WriteString(fmt.Sprintf(`<td class="kjHistroy">%s</td>`, r.History))
		b.WriteString("\n</tr>\n")
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

const testBaseURL = "https://www.release.tdnet.info/inbs/"

func TestParseListing(t *testing.T) {
	html := buildListingHTML(136, []listingRow{
		{
			Time:    "08:00",
			Code:    "12340",
			Name:    "株式会社サンプル",
			Title:   "2026年3月期 第1四半期決算短信〔日本基準〕（連結）",
			PDFHref: "140120250819512345.pdf",
			ZIPHref: "081220250819512345.zip",
			Place:   "東",
		},
		{
			Time:    "08:30",
			Code:    "98760",
			Name:    "テスト工業",
			Title:   "臨時報告書の提出に関するお知らせ",
			PDFHref: "140120250819598765.pdf",
			Place:   "東",
			History: "訂正",
		},
	})

	page, err := ParseListing(strings.NewReader(html), testBaseURL)
	require.NoError(t, err)

	assert.Equal(t, 136, page.TotalCount)
	require.Len(t, page.Rows, 2)

	first := page.Rows[0]
	assert.Equal(t, "08:00", first.Time)
	assert.Equal(t, "12340", first.Code)
	assert.Equal(t, "株式会社サンプル", first.Name)
	assert.Equal(t, "2026年3月期 第1四半期決算短信〔日本基準〕（連結）", first.Title)
	assert.Equal(t, testBaseURL+"140120250819512345.pdf", first.PDFURL)
	assert.Equal(t, testBaseURL+"081220250819512345.zip", first.XBRLURL)
	assert.Equal(t, "東", first.Place)
	assert.True(t, first.HasXBRL())

	second := page.Rows[1]
	assert.Empty(t, second.XBRLURL)
	assert.False(t, second.HasXBRL())
	assert.Equal(t, "訂正", second.History)

	xbrl := page.XBRLRows()
	require.Len(t, xbrl, 1)
	assert.Equal(t, "12340", xbrl[0].Code)
}

func TestParseListing_NoBanner(t *testing.T) {
	html := buildListingHTML(0, []listingRow{
		{Time: "09:00", Code: "11110", Name: "A社", Title: "決算短信", PDFHref: "a.pdf", ZIPHref: "a.zip"},
	})

	page, err := ParseListing(strings.NewReader(html), testBaseURL)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Len(t, page.Rows, 1)
}

func TestParseListing_EmptyTable(t *testing.T) {
	html := `<html><body><table id="main-list-table"></table></body></html>`

	page, err := ParseListing(strings.NewReader(html), testBaseURL)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Zero(t, page.TotalCount)
}

func TestParseListing_AbsoluteHrefsKept(t *testing.T) {
	html := buildListingHTML(0, []listingRow{
		{
			Time:    "10:00",
			Code:    "22220",
			Name:    "B社",
			Title:   "決算短信",
			PDFHref: "https://elsewhere.example.com/doc.pdf",
			ZIPHref: "https://elsewhere.example.com/pkg.zip",
		},
	})

	page, err := ParseListing(strings.NewReader(html), testBaseURL)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "https://elsewhere.example.com/doc.pdf", page.Rows[0].PDFURL)
	assert.Equal(t, "https://elsewhere.example.com/pkg.zip", page.Rows[0].XBRLURL)
}

func TestPageURL(t *testing.T) {
	assert.Equal(t,
		"https://www.release.tdnet.info/inbs/I_list_001_20250819.html",
		PageURL(testBaseURL, "20250819", 1),
	)
	assert.Equal(t,
		"https://www.release.tdnet.info/inbs/I_list_012_20250819.html",
		PageURL(testBaseURL, "20250819", 12),
	)
}

func TestIdentityKey(t *testing.T) {
	withXBRL := Disclosure{PDFURL: "https://x/p.pdf", XBRLURL: "https://x/p.zip"}
	assert.Equal(t, "https://x/p.zip", withXBRL.IdentityKey())

	withoutXBRL := Disclosure{PDFURL: "https://x/p.pdf"}
	assert.Equal(t, "https://x/p.pdf", withoutXBRL.IdentityKey())
}
