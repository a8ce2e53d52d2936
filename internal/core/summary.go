package core

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary holds the derived metrics for one period's record set.
type Summary struct {
	TotalInflow  Money
	TotalOutflow Money
	Balance      Money
	// Breakdown maps spending category to summed outflow, in first-seen
	// order.
	Breakdown []CategoryAmount
}
