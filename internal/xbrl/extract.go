package xbrl

import "strings"

// Profile is the flat field mapping assembled for one filing. The
// identity keys date, securities_code, and company_name are always
// present, possibly as empty strings; every other key holds a
// non-empty value, so an absent key means "not observed".
type Profile map[string]Value

// identityKeys are always present on an assembled profile.
var identityKeys = []string{"date", "securities_code", "company_name"}

// Date returns the filing date field.
func (p Profile) Date() string { return p["date"].Text }

// SecuritiesCode returns the issuer code field.
func (p Profile) SecuritiesCode() string { return p["securities_code"].Text }

// CompanyName returns the resolved company name field.
func (p Profile) CompanyName() string { return p["company_name"].Text }

func (p Profile) ensureIdentity() {
	for _, k := range identityKeys {
		if _, ok := p[k]; !ok {
			p[k] = TextValue("")
		}
	}
}

// MergeFirstWins folds the given mappings into a fresh profile in
// order. The first mapping to define a key wins; the inputs are never
// mutated, which keeps the precedence between sources auditable.
func MergeFirstWins(sections ...map[string]Value) Profile {
	out := make(Profile)
	for _, sec := range sections {
		for k, v := range sec {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

// ExtractSection applies one curated field table to a document.
// Fields whose tag or context is absent, or whose value normalizes to
// nothing, are left out of the result.
func ExtractSection(doc *Document, fields []Field) map[string]Value {
	out := make(map[string]Value)
	for _, f := range fields {
		fact, ok := doc.Find(f.Tag, f.Context)
		if !ok {
			continue
		}
		switch f.Kind {
		case KindNumber:
			if n, ok := ParseNumber(fact.Text, fact.Sign); ok {
				out[f.Key] = NumberValue(n)
			}
		case KindDate:
			if s := NormalizeDate(fact.Text); s != "" {
				out[f.Key] = TextValue(s)
			}
		case KindCode:
			if s := stripSpace(fact.Text); s != "" {
				out[f.Key] = TextValue(s)
			}
		case KindText:
			if fact.Text != "" {
				out[f.Key] = TextValue(fact.Text)
			}
		}
	}
	return out
}

// ResolveCompany tries each identity dialect in order and returns the
// section from the first dialect yielding any field, together with
// the dialect name. Returning the whole section from one dialect
// keeps records free of cross-dialect mixtures.
func ResolveCompany(doc *Document) (map[string]Value, string) {
	for _, d := range CompanyDialects {
		if sec := ExtractSection(doc, d.Fields); len(sec) > 0 {
			return sec, d.Name
		}
	}
	return map[string]Value{}, ""
}

// SweepSummary captures every summary-namespace fact under a key made
// of its local name plus a bucket-derived suffix. Numeric text parses
// to a number; other text is kept verbatim except the full-width dash
// placeholder, with localized dates normalized. The first fact to
// claim a key wins.
func SweepSummary(doc *Document) map[string]Value {
	out := make(map[string]Value)
	for _, fact := range doc.Namespace(SummaryNamespace) {
		key := fact.LocalName() + BucketFor(fact.Context).SummaryKeySuffix()
		if _, ok := out[key]; ok {
			continue
		}
		if n, ok := ParseNumber(fact.Text, fact.Sign); ok {
			out[key] = NumberValue(n)
			continue
		}
		text := fact.Text
		if text == "" || text == "－" {
			continue
		}
		if strings.Contains(text, "年") && strings.Contains(text, "月") {
			text = NormalizeDate(text)
		}
		out[key] = TextValue(text)
	}
	return out
}

// SweepAttachment captures every numeric attachment-namespace fact
// under a key made of its local name plus a bucket-derived suffix.
// Non-numeric facts are dropped; the first fact to claim a key wins.
func SweepAttachment(doc *Document) map[string]Value {
	out := make(map[string]Value)
	for _, fact := range doc.Namespace(AttachmentNamespace) {
		key := fact.LocalName() + BucketFor(fact.Context).AttachmentKeySuffix()
		if _, ok := out[key]; ok {
			continue
		}
		if n, ok := ParseNumber(fact.Text, fact.Sign); ok {
			out[key] = NumberValue(n)
		}
	}
	return out
}

// ExtractSummary assembles the flat mapping for one summary document:
// filing date, company identity, each curated section in order, then
// the namespace sweep. Earlier sources win on key collision, and the
// identity keys are present even when unresolved.
func ExtractSummary(doc *Document) Profile {
	date := make(map[string]Value, 1)
	if fact, ok := doc.Find(filingDateTag, ""); ok {
		if s := NormalizeDate(fact.Text); s != "" {
			date["date"] = TextValue(s)
		}
	}

	company, _ := ResolveCompany(doc)

	sections := make([]map[string]Value, 0, len(SummarySections)+3)
	sections = append(sections, date, company)
	for _, sec := range SummarySections {
		sections = append(sections, ExtractSection(doc, sec.Fields))
	}
	sections = append(sections, SweepSummary(doc))

	p := MergeFirstWins(sections...)
	p.ensureIdentity()
	return p
}
