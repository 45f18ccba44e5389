package billing

// ChargeCategory classifies what a receivable bills for
type ChargeCategory string

const (
	CategoryRent    ChargeCategory = "RENT"
	CategoryWater   ChargeCategory = "WATER"
	CategoryStorage ChargeCategory = "STORAGE"
	CategoryLateFee ChargeCategory = "LATE_FEE"
	CategoryOther   ChargeCategory = "OTHER"
)

// IsValid checks if the charge category is valid
func (c ChargeCategory) IsValid() bool {
	switch c {
	case CategoryRent, CategoryWater, CategoryStorage, CategoryLateFee, CategoryOther:
		return true
	}
	return false
}

// IsRecurring reports whether the category is produced by monthly
// billing runs. At most one receivable per account, statement date and
// recurring category may exist.
func (c ChargeCategory) IsRecurring() bool {
	switch c {
	case CategoryRent, CategoryWater, CategoryStorage, CategoryLateFee:
		return true
	}
	return false
}

// AllocationPriority orders categories within one statement date when
// payments are applied. Lower values are settled first.
func (c ChargeCategory) AllocationPriority() int {
	switch c {
	case CategoryRent:
		return 0
	case CategoryWater:
		return 1
	case CategoryStorage:
		return 2
	case CategoryLateFee:
		return 3
	default:
		return 4
	}
}

// RecurringCategories lists the categories a monthly billing run may produce
func RecurringCategories() []ChargeCategory {
	return []ChargeCategory{CategoryRent, CategoryWater, CategoryStorage, CategoryLateFee}
}
