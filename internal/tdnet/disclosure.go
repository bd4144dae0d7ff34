package tdnet

// Disclosure is one row of a TDnet disclosure listing page.
type Disclosure struct {
	Date    string `json:"date"` // YYYYMMDD, stamped by the crawler
	Time    string `json:"time"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	PDFURL  string `json:"pdf_url"`
	XBRLURL string `json:"xbrl_url,omitempty"`
	Place   string `json:"place"`
	History string `json:"history"`
}

// IdentityKey returns the stable key used for cross-page deduplication:
// the XBRL package URL when present, otherwise the PDF URL.
func (d Disclosure) IdentityKey() string {
	if d.XBRLURL != "" {
		return d.XBRLURL
	}
	return d.PDFURL
}

// HasXBRL reports whether the row links an XBRL package.
func (d Disclosure) HasXBRL() bool {
	return d.XBRLURL != ""
}
