package tracker

import (
	"fmt"

	"github.com/ogulcanaydogan/token-ledger/pkg/advisory"
	"github.com/ogulcanaydogan/token-ledger/pkg/pricing"
)

// CostCalculator prices usage against a pricing table.
type CostCalculator struct {
	table *pricing.Table
	sink  advisory.Sink
}

// NewCostCalculator creates a cost calculator. A nil sink discards advisories.
func NewCostCalculator(table *pricing.Table, sink advisory.Sink) *CostCalculator {
	if sink == nil {
		sink = advisory.Discard
	}
	return &CostCalculator{table: table, sink: sink}
}

// Cost returns the unrounded cost of in and out units of class. Unknown
// classes are priced at the table's fallback rates and raise an advisory.
func (c *CostCalculator) Cost(class string, in, out int64) float64 {
	entry, ok := c.table.Lookup(class)
	if !ok {
		c.sink.Advise(advisory.Advisory{
			Kind:    advisory.FallbackPricing,
			Subject: class,
			Message: fmt.Sprintf("no pricing for %q, using %s rates", class, c.table.Fallback()),
		})
	}
	return CalculateCost(entry, c.table.UnitScale(), in, out)
}

// CalculateCost applies one price entry to a pair of quantities.
func CalculateCost(entry pricing.Entry, unitScale float64, in, out int64) float64 {
	return float64(in)/unitScale*entry.InRate + float64(out)/unitScale*entry.OutRate
}
