package observability

// Metric name prefixes
const (
	MetricPrefix = "betbook"
)

// Metric names
const (
	// Pick metrics
	PicksSubmittedTotal = MetricPrefix + ".picks.submitted_total"

	// Settlement metrics
	SettlementsTotal   = MetricPrefix + ".settlements.total"
	SettlementDuration = MetricPrefix + ".settlements.duration"

	// Ledger metrics
	LedgerWritesTotal = MetricPrefix + ".ledger.writes_total"
)

// Label keys
const (
	LabelWagerType = "wager_type"
	LabelMode      = "mode"
	LabelStatus    = "status"
)
