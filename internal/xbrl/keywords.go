package xbrl

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// nonFinancialKeywords mark identity, contact, and procedural field
// keys. Exclusion is checked before inclusion, so these win over any
// financial-vocabulary match in the same key.
var nonFinancialKeywords = []string{
	"companyname", "company_name",
	"documentname", "document_name",
	"filingdate", "filing_date", "date",
	"securitiescode", "securities_code",
	"tel", "url",
	"representative",
	"inquiries",
	"title", "name",
	"tokyostockexchange", "nagoyastockexchange",
	"sapporostockexchange", "fukuokastockexchange",
	"japansecuritiesdealersassociation",
	"generalbusiness", "specificbusiness",
	"fasf", "supplemental",
	"convening", "briefing",
	"targetaudience", "wayofgetting",
	"note", "preamble",
	"accountingpolicy", "accountingpolicies",
	"accountingestimate", "accountingestimates",
	"retrospective",
	"restatement",
	"significantchanges",
	"applyingofspecific",
	"changesbasedonrevisions",
	"changesotherthan",
	"noteto", "subsidiariesnewly",
	"subsidiariesexcluded",
	"nameof", "fraction",
	"processing", "method",
}

// financialKeywords cover financial-statement vocabulary across
// income, assets, liabilities, equity, cash flow, shares, and ratio
// terms. A key matching neither list is excluded by default.
var financialKeywords = []string{
	// income statement
	"sales", "revenue", "income", "profit", "loss", "expense",
	"cost", "margin",

	// assets
	"asset", "cash", "deposit", "receivable", "inventory",
	"property", "equipment", "investment", "goodwill",

	// liabilities
	"liability", "payable", "debt", "loan", "obligation",
	"provision",

	// equity
	"equity", "capital", "surplus", "retained", "treasury",

	// cash flow
	"cashflow", "cf", "operating", "investing", "financing",

	// shares and dividends
	"share", "stock", "dividend", "eps", "bps", "dps",

	// ratios
	"ratio", "rate", "roe", "roa", "roi", "adequacy", "payout",

	// remaining statement vocabulary
	"depreciation", "amortization", "allowance", "accumulated",
	"deferred", "tax", "valuation", "comprehensive",
	"attributable", "controlling", "working", "fixed",
	"current", "noncurrent", "prior", "previous",
	"quarter", "period", "year", "annual",
	"fiscal", "average", "total", "net",
	"gross", "ordinary", "extraordinary",
	"special", "other", "before", "after",
	"beginning", "end", "increase", "decrease",
	"change", "adjustment", "balance", "amount",
	"number", "issued", "outstanding", "consolidated",
	"nonconsolidated", "segment", "business", "account",
	"statement", "result", "forecast", "plan",
	"budget", "actual", "member", "mark",
}

// IsFinancialKey reports whether a field key denotes a financial line
// item. The exclusion list is checked first and takes precedence; a
// key matching neither list is not financial.
func IsFinancialKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range nonFinancialKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// KeywordLists holds operator-supplied additions to the classifier
// vocabulary. Summary taxonomies grow new items between fiscal years,
// so the built-in lists can be extended without a rebuild.
type KeywordLists struct {
	Exclude []string `yaml:"exclude"`
	Include []string `yaml:"include"`
}

// LoadKeywords reads additional classifier keywords from a YAML file.
// The file has a top-level "keywords" key:
//
//	keywords:
//	  exclude: [auditor]
//	  include: [ebitda]
func LoadKeywords(path string) (*KeywordLists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: read keywords %s", path)
	}

	var wrapper struct {
		Keywords KeywordLists `yaml:"keywords"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "xbrl: parse keywords %s", path)
	}

	return &wrapper.Keywords, nil
}

// ExtendKeywords appends the loaded lists to the built-in vocabulary.
// Entries are lowercased; exclusions keep precedence over inclusions.
func ExtendKeywords(kw *KeywordLists) {
	for _, w := range kw.Exclude {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			nonFinancialKeywords = append(nonFinancialKeywords, w)
		}
	}
	for _, w := range kw.Include {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			financialKeywords = append(financialKeywords, w)
		}
	}
}
