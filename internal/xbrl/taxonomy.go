package xbrl

// Taxonomy namespaces carried by the documents this package reads.
// The summary namespace tags headline figures, the REIT namespace is
// the real-estate-trust spelling of the same concepts, and the
// attachment namespace tags full financial statements.
const (
	SummaryNamespace    = "tse-ed-t"
	REITNamespace       = "tse-re-t"
	AttachmentNamespace = "jppfs_cor"
)

// filingDateTag carries the disclosure date in any context.
const filingDateTag = "tse-ed-t:FilingDate"

// Exact context references carried by curated summary fields.
const (
	ctxCurrentDuration    = "CurrentYearDuration_ConsolidatedMember_ResultMember"
	ctxPriorDuration      = "PriorYearDuration_ConsolidatedMember_ResultMember"
	ctxCurrentInstant     = "CurrentYearInstant_ConsolidatedMember_ResultMember"
	ctxPriorInstant       = "PriorYearInstant_ConsolidatedMember_ResultMember"
	ctxCurrentInstantSolo = "CurrentYearInstant_NonConsolidatedMember_ResultMember"
	ctxCurrentInstantBare = "CurrentYearInstant"
	ctxPrior1InstantBare  = "Prior1YearInstant"
)

// FieldKind selects how a matched fact's text is normalized.
type FieldKind int

const (
	KindNumber FieldKind = iota
	KindDate
	KindText
	KindCode // text with all whitespace removed
)

// Field binds one canonical output key to the qualified tag name and
// exact context reference that carry it. An empty Context matches the
// first element tagged with that name regardless of context.
type Field struct {
	Key     string
	Tag     string
	Context string
	Kind    FieldKind
}

// Dialect names one taxonomy's spelling of the company-identity
// section. Dialects are tried in order and the first with any hit
// supplies the whole section, so fields from competing dialects never
// mix within one record.
type Dialect struct {
	Name   string
	Fields []Field
}

// CompanyDialects lists the identity-section dialects in resolution
// order: general business filers first, then real-estate trusts.
var CompanyDialects = []Dialect{
	{
		Name: "general",
		Fields: []Field{
			{Key: "company_name", Tag: "tse-ed-t:CompanyName", Kind: KindText},
			{Key: "securities_code", Tag: "tse-ed-t:SecuritiesCode", Kind: KindCode},
			{Key: "document_name", Tag: "tse-ed-t:DocumentName", Kind: KindText},
			{Key: "representative_title", Tag: "tse-ed-t:TitleRepresentative", Kind: KindText},
			{Key: "representative_name", Tag: "tse-ed-t:NameRepresentative", Kind: KindText},
			{Key: "inquiries_title", Tag: "tse-ed-t:TitleInquiries", Kind: KindText},
			{Key: "inquiries_name", Tag: "tse-ed-t:NameInquiries", Kind: KindText},
			{Key: "tel", Tag: "tse-ed-t:Tel", Kind: KindText},
			{Key: "url", Tag: "tse-ed-t:URL", Kind: KindText},
		},
	},
	{
		Name: "reit",
		Fields: []Field{
			{Key: "company_name", Tag: "tse-re-t:IssuerNameREIT", Kind: KindText},
			{Key: "securities_code", Tag: "tse-re-t:SecuritiesCode", Kind: KindCode},
			{Key: "document_name", Tag: "tse-re-t:DocumentName", Kind: KindText},
			{Key: "representative_title", Tag: "tse-re-t:TitleRepresentative", Kind: KindText},
			{Key: "representative_name", Tag: "tse-re-t:NameRepresentative", Kind: KindText},
			{Key: "inquiries_title", Tag: "tse-re-t:TitleInquiries", Kind: KindText},
			{Key: "inquiries_name", Tag: "tse-re-t:NameInquiries", Kind: KindText},
			{Key: "tel", Tag: "tse-re-t:Tel", Kind: KindText},
			{Key: "url", Tag: "tse-re-t:URL", Kind: KindText},
		},
	},
}

// Section is one curated extraction pass over a summary document.
type Section struct {
	Name   string
	Fields []Field
}

// SummarySections lists the curated summary passes in merge order.
var SummarySections = []Section{
	{Name: "income", Fields: incomeFields},
	{Name: "balance", Fields: balanceFields},
	{Name: "cashflow", Fields: cashFlowFields},
	{Name: "ratios", Fields: ratioFields},
	{Name: "dividends", Fields: dividendFields},
	{Name: "other", Fields: otherFields},
}

var incomeFields = []Field{
	{Key: "net_sales_current", Tag: "tse-ed-t:NetSales", Context: ctxCurrentDuration},
	{Key: "net_sales_prior", Tag: "tse-ed-t:NetSales", Context: ctxPriorDuration},
	{Key: "operating_income_current", Tag: "tse-ed-t:OperatingIncome", Context: ctxCurrentDuration},
	{Key: "operating_income_prior", Tag: "tse-ed-t:OperatingIncome", Context: ctxPriorDuration},
	{Key: "ordinary_income_current", Tag: "tse-ed-t:OrdinaryIncome", Context: ctxCurrentDuration},
	{Key: "ordinary_income_prior", Tag: "tse-ed-t:OrdinaryIncome", Context: ctxPriorDuration},
	{Key: "profit_attributable_to_owners_current", Tag: "tse-ed-t:ProfitAttributableToOwnersOfParent", Context: ctxCurrentDuration},
	{Key: "profit_attributable_to_owners_prior", Tag: "tse-ed-t:ProfitAttributableToOwnersOfParent", Context: ctxPriorDuration},
	{Key: "comprehensive_income_current", Tag: "tse-ed-t:ComprehensiveIncome", Context: ctxCurrentDuration},
	{Key: "comprehensive_income_prior", Tag: "tse-ed-t:ComprehensiveIncome", Context: ctxPriorDuration},
	{Key: "investment_profit_loss_current", Tag: "tse-ed-t:InvestmentProfitLossOnEquityMethod", Context: ctxCurrentDuration},
	{Key: "investment_profit_loss_prior", Tag: "tse-ed-t:InvestmentProfitLossOnEquityMethod", Context: ctxPriorDuration},
}

var balanceFields = []Field{
	{Key: "total_assets_current", Tag: "tse-ed-t:TotalAssets", Context: ctxCurrentInstant},
	{Key: "total_assets_prior", Tag: "tse-ed-t:TotalAssets", Context: ctxPriorInstant},
	{Key: "net_assets_current", Tag: "tse-ed-t:NetAssets", Context: ctxCurrentInstant},
	{Key: "net_assets_prior", Tag: "tse-ed-t:NetAssets", Context: ctxPriorInstant},
	{Key: "owners_equity_current", Tag: "tse-ed-t:OwnersEquity", Context: ctxCurrentInstant},
	{Key: "owners_equity_prior", Tag: "tse-ed-t:OwnersEquity", Context: ctxPriorInstant},
}

var cashFlowFields = []Field{
	{Key: "operating_cash_flow_current", Tag: "tse-ed-t:CashFlowsFromOperatingActivities", Context: ctxCurrentDuration},
	{Key: "operating_cash_flow_prior", Tag: "tse-ed-t:CashFlowsFromOperatingActivities", Context: ctxPriorDuration},
	{Key: "investing_cash_flow_current", Tag: "tse-ed-t:CashFlowsFromInvestingActivities", Context: ctxCurrentDuration},
	{Key: "investing_cash_flow_prior", Tag: "tse-ed-t:CashFlowsFromInvestingActivities", Context: ctxPriorDuration},
	{Key: "financing_cash_flow_current", Tag: "tse-ed-t:CashFlowsFromFinancingActivities", Context: ctxCurrentDuration},
	{Key: "financing_cash_flow_prior", Tag: "tse-ed-t:CashFlowsFromFinancingActivities", Context: ctxPriorDuration},
	{Key: "cash_and_equivalents_current", Tag: "tse-ed-t:CashAndEquivalentsEndOfPeriod", Context: ctxCurrentInstant},
	{Key: "cash_and_equivalents_prior", Tag: "tse-ed-t:CashAndEquivalentsEndOfPeriod", Context: ctxPriorInstant},
}

var ratioFields = []Field{
	{Key: "eps_current", Tag: "tse-ed-t:NetIncomePerShare", Context: ctxCurrentDuration},
	{Key: "eps_prior", Tag: "tse-ed-t:NetIncomePerShare", Context: ctxPriorDuration},
	{Key: "bps_current", Tag: "tse-ed-t:NetAssetsPerShare", Context: ctxCurrentInstant},
	{Key: "bps_prior", Tag: "tse-ed-t:NetAssetsPerShare", Context: ctxPriorInstant},
	{Key: "roe_current", Tag: "tse-ed-t:NetIncomeToShareholdersEquityRatio", Context: ctxCurrentDuration},
	{Key: "roe_prior", Tag: "tse-ed-t:NetIncomeToShareholdersEquityRatio", Context: ctxPriorDuration},
	{Key: "roa_current", Tag: "tse-ed-t:OrdinaryIncomeToTotalAssetsRatio", Context: ctxCurrentDuration},
	{Key: "roa_prior", Tag: "tse-ed-t:OrdinaryIncomeToTotalAssetsRatio", Context: ctxPriorDuration},
	{Key: "operating_margin_current", Tag: "tse-ed-t:OperatingIncomeToNetSalesRatio", Context: ctxCurrentDuration},
	{Key: "operating_margin_prior", Tag: "tse-ed-t:OperatingIncomeToNetSalesRatio", Context: ctxPriorDuration},
	{Key: "equity_ratio_current", Tag: "tse-ed-t:CapitalAdequacyRatio", Context: ctxCurrentInstant},
	{Key: "equity_ratio_prior", Tag: "tse-ed-t:CapitalAdequacyRatio", Context: ctxPriorInstant},
	{Key: "payout_ratio_current", Tag: "tse-ed-t:PayoutRatio", Context: ctxCurrentDuration},
	{Key: "average_shares_current", Tag: "tse-ed-t:AverageNumberOfShares", Context: ctxCurrentDuration},
	{Key: "issued_shares_current", Tag: "tse-ed-t:NumberOfIssuedAndOutstandingSharesAtTheEndOfFiscalYearIncludingTreasuryStock", Context: ctxCurrentInstant},
}

var dividendFields = []Field{
	{Key: "dividend_per_share_current", Tag: "tse-ed-t:DividendPerShare", Context: ctxCurrentDuration},
	{Key: "total_dividend_current", Tag: "tse-ed-t:TotalDividendPaidAnnual", Context: ctxCurrentDuration},
	{Key: "shareholder_meeting_date", Tag: "tse-ed-t:DateOfGeneralShareholdersMeetingAsPlanned", Context: ctxCurrentInstantBare, Kind: KindDate},
	{Key: "dividend_payment_date", Tag: "tse-ed-t:DividendPayableDateAsPlanned", Context: ctxCurrentInstantBare, Kind: KindDate},
	{Key: "securities_report_date", Tag: "tse-ed-t:AnnualSecuritiesReportFilingDateAsPlanned", Context: ctxCurrentInstantBare, Kind: KindDate},
}

var otherFields = []Field{
	{Key: "fiscal_year_end", Tag: "tse-ed-t:FiscalYearEnd", Context: ctxCurrentInstantBare, Kind: KindDate},
	{Key: "treasury_stock_count", Tag: "tse-ed-t:NumberOfTreasuryStockAtTheEndOfFiscalYear", Context: ctxCurrentInstantSolo},
	{Key: "new_subsidiaries_count", Tag: "tse-ed-t:NumberOfSubsidiariesNewlyConsolidated", Context: ctxCurrentDuration},
	{Key: "new_subsidiaries_names", Tag: "tse-ed-t:NameOfSubsidiariesNewlyConsolidated", Context: ctxCurrentDuration, Kind: KindText},
}

// AttachmentFields are the curated balance-sheet detail lines read
// from the attachment document that carries the full balance sheet.
var AttachmentFields = []Field{
	{Key: "cash_and_deposits_current", Tag: "jppfs_cor:CashAndDeposits", Context: ctxCurrentInstantBare},
	{Key: "cash_and_deposits_prior", Tag: "jppfs_cor:CashAndDeposits", Context: ctxPrior1InstantBare},
	{Key: "accounts_receivable_current", Tag: "jppfs_cor:NotesAndAccountsReceivableTradeAndContractAssets", Context: ctxCurrentInstantBare},
	{Key: "accounts_receivable_prior", Tag: "jppfs_cor:NotesAndAccountsReceivableTradeAndContractAssets", Context: ctxPrior1InstantBare},
	{Key: "inventory_current", Tag: "jppfs_cor:MerchandiseAndFinishedGoods", Context: ctxCurrentInstantBare},
	{Key: "inventory_prior", Tag: "jppfs_cor:MerchandiseAndFinishedGoods", Context: ctxPrior1InstantBare},
	{Key: "work_in_process_current", Tag: "jppfs_cor:WorkInProcess", Context: ctxCurrentInstantBare},
	{Key: "work_in_process_prior", Tag: "jppfs_cor:WorkInProcess", Context: ctxPrior1InstantBare},
	{Key: "raw_materials_current", Tag: "jppfs_cor:RawMaterialsAndSupplies", Context: ctxCurrentInstantBare},
	{Key: "raw_materials_prior", Tag: "jppfs_cor:RawMaterialsAndSupplies", Context: ctxPrior1InstantBare},
}
