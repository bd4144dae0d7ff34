package xbrl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFinancialKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		// identity and contact keys stay out of financial output
		{"company_name", false},
		{"securities_code", false},
		{"filing_date", false},
		{"date", false},
		{"tel", false},
		{"representative_name", false},
		{"CompanyName_currentyear", false},
		{"URL_currentyear", false},

		// curated line items
		{"net_sales_current", true},
		{"total_assets_prior", true},
		{"operating_cash_flow_current", true},
		{"eps_current", true},
		{"equity_ratio_current", true},
		{"dividend_per_share_current", true},

		// sweep keys keep their taxonomy casing
		{"CashAndDeposits_current", true},
		{"NetSales_duration_current", true},
		{"TOTAL_ASSETS_PRIOR", true},

		// exclusion wins over any financial term in the same key
		{"NameOfSubsidiariesNewlyConsolidated_current", false},
		{"NoteToConsolidatedFinancialStatements_current", false},
		{"RetrospectiveRestatement_current", false},
		{"dividend_payment_date_current", false},

		// unmatched keys are not financial
		{"mysterious_key_x", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsFinancialKey(tc.key), "key %q", tc.key)
	}
}

func TestKeywordListsAreLowercase(t *testing.T) {
	for _, kw := range nonFinancialKeywords {
		assert.Equal(t, kw, toLowerASCII(kw), "exclusion keyword %q", kw)
	}
	for _, kw := range financialKeywords {
		assert.Equal(t, kw, toLowerASCII(kw), "inclusion keyword %q", kw)
	}
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keywords:
  exclude:
    - auditor
  include:
    - EBITDA
    - "  arr  "
`), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"auditor"}, kw.Exclude)
	assert.Equal(t, []string{"EBITDA", "  arr  "}, kw.Include)
}

func TestLoadKeywords_MissingFile(t *testing.T) {
	_, err := LoadKeywords(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadKeywords_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [not: a: map"), 0o644))

	_, err := LoadKeywords(path)
	assert.Error(t, err)
}

func TestExtendKeywords(t *testing.T) {
	origExclude := nonFinancialKeywords
	origInclude := financialKeywords
	defer func() {
		nonFinancialKeywords = origExclude
		financialKeywords = origInclude
	}()
	nonFinancialKeywords = append([]string(nil), origExclude...)
	financialKeywords = append([]string(nil), origInclude...)

	assert.False(t, IsFinancialKey("ebitda"))
	assert.True(t, IsFinancialKey("auditor_fee_current"), "matches built-in 'current'")

	ExtendKeywords(&KeywordLists{
		Exclude: []string{"Auditor"},
		Include: []string{" EBITDA "},
	})

	// Entries are lowercased and trimmed on the way in.
	assert.True(t, IsFinancialKey("ebitda"))

	// The new exclusion wins over the built-in 'current' inclusion.
	assert.False(t, IsFinancialKey("auditor_fee_current"))

	// And over a later matching inclusion.
	ExtendKeywords(&KeywordLists{Include: []string{"auditor"}})
	assert.False(t, IsFinancialKey("auditor_fee_current"))
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
