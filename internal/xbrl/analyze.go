package xbrl

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// AnalyzeReport is the nested per-document view produced by the
// simple analysis path: headline figures grouped by statement and
// period rather than flattened into suffixed keys.
type AnalyzeReport struct {
	CompanyInfo     map[string]string `json:"company_info"`
	IncomeStatement PeriodStatement   `json:"income_statement"`
	BalanceSheet    PeriodStatement   `json:"balance_sheet"`
	Metadata        ReportMetadata    `json:"metadata"`
}

// PeriodStatement groups the same line items for the current and the
// prior period.
type PeriodStatement struct {
	CurrentYear map[string]float64 `json:"current_year"`
	PriorYear   map[string]float64 `json:"prior_year"`
}

// ReportMetadata records provenance for one analyzed document.
// Headline figures are reported in millions of yen.
type ReportMetadata struct {
	ExtractionDate string `json:"extraction_date"`
	SourceFile     string `json:"source_file"`
	Currency       string `json:"currency"`
	Unit           string `json:"unit"`
}

// analyzeIncomeItems are the headline income-statement lines of the
// simple path, keyed by output name.
var analyzeIncomeItems = map[string]string{
	"net_sales":                     "tse-ed-t:NetSales",
	"operating_income":              "tse-ed-t:OperatingIncome",
	"ordinary_income":               "tse-ed-t:OrdinaryIncome",
	"profit_attributable_to_owners": "tse-ed-t:ProfitAttributableToOwnersOfParent",
	"comprehensive_income":          "tse-ed-t:ComprehensiveIncome",
}

// analyzeBalanceItems are the headline balance-sheet lines of the
// simple path.
var analyzeBalanceItems = map[string]string{
	"total_assets":  "tse-ed-t:TotalAssets",
	"net_assets":    "tse-ed-t:NetAssets",
	"owners_equity": "tse-ed-t:OwnersEquity",
}

// Analyze reads one summary document and produces the nested report.
func Analyze(path string) (*AnalyzeReport, error) {
	doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	report := &AnalyzeReport{
		CompanyInfo: make(map[string]string),
		IncomeStatement: PeriodStatement{
			CurrentYear: statementLines(doc, analyzeIncomeItems, ctxCurrentDuration),
			PriorYear:   statementLines(doc, analyzeIncomeItems, ctxPriorDuration),
		},
		BalanceSheet: PeriodStatement{
			CurrentYear: statementLines(doc, analyzeBalanceItems, ctxCurrentInstant),
			PriorYear:   statementLines(doc, analyzeBalanceItems, ctxPriorInstant),
		},
		Metadata: ReportMetadata{
			ExtractionDate: time.Now().Format(time.RFC3339),
			SourceFile:     path,
			Currency:       "JPY",
			Unit:           "百万円",
		},
	}

	if fact, ok := doc.Find("tse-ed-t:CompanyName", ""); ok && fact.Text != "" {
		report.CompanyInfo["company_name"] = fact.Text
	}
	if fact, ok := doc.Find("tse-ed-t:SecuritiesCode", ""); ok {
		if code := stripSpace(fact.Text); code != "" {
			report.CompanyInfo["securities_code"] = code
		}
	}
	if fact, ok := doc.Find(filingDateTag, ""); ok {
		if s := NormalizeDate(fact.Text); s != "" {
			report.CompanyInfo["filing_date"] = s
		}
	}
	if fact, ok := doc.Find("tse-ed-t:DocumentName", ""); ok && fact.Text != "" {
		report.CompanyInfo["document_name"] = fact.Text
	}

	return report, nil
}

func statementLines(doc *Document, items map[string]string, contextRef string) map[string]float64 {
	out := make(map[string]float64)
	for key, tag := range items {
		fact, ok := doc.Find(tag, contextRef)
		if !ok {
			continue
		}
		if n, ok := ParseNumber(fact.Text, fact.Sign); ok {
			out[key] = n
		}
	}
	return out
}

// AnalyzeDirectory analyzes the first summary document of every
// filing under dir and returns reports keyed by filing directory
// name. Filings without a summary document are logged and skipped.
func AnalyzeDirectory(dir string) (map[string]*AnalyzeReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: read directory %s", dir)
	}

	reports := make(map[string]*AnalyzeReport)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		summaries, _ := filepath.Glob(filepath.Join(dir, name, summarySubdir, summaryPattern))
		if len(summaries) == 0 {
			zap.L().Warn("xbrl: filing has no summary document", zap.String("filing", name))
			continue
		}
		report, err := Analyze(summaries[0])
		if err != nil {
			zap.L().Warn("xbrl: analysis failed",
				zap.String("filing", name),
				zap.Error(err),
			)
			continue
		}
		reports[name] = report
	}

	zap.L().Info("xbrl: directory analysis complete",
		zap.String("dir", dir),
		zap.Int("analyzed", len(reports)),
	)
	return reports, nil
}
