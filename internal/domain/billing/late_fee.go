package billing

import "github.com/shopspring/decimal"

// ComputeLateFee returns the fee for one delinquent cycle: the portion
// of the cycle's recurring charges not covered by money available at
// the overdue date. A fully covered cycle yields zero. Fees never
// compound; the inputs must exclude earlier late fees.
func ComputeLateFee(cycleCharges, availableBalance decimal.Decimal) decimal.Decimal {
	if availableBalance.IsNegative() {
		availableBalance = decimal.Zero
	}
	fee := cycleCharges.Sub(availableBalance)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}
