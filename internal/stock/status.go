// Package stock derives display status from on-hand quantity and the low-stock threshold.
package stock

// Status is the human-readable stock label.
type Status string

const (
	OutOfStock Status = "Out of Stock"
	LowStock   Status = "Low Stock"
	InStock    Status = "In Stock"
)

// Variant is the UI badge style paired with a Status.
type Variant string

const (
	VariantDestructive Variant = "destructive"
	VariantWarning     Variant = "warning"
	VariantSuccess     Variant = "success"
)

// Classify labels a quantity against its threshold. Quantities at or below
// zero are out of stock; the threshold itself counts as low.
func Classify(quantity, threshold int) Status {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= threshold:
		return LowStock
	default:
		return InStock
	}
}

func (s Status) Variant() Variant {
	switch s {
	case OutOfStock:
		return VariantDestructive
	case LowStock:
		return VariantWarning
	default:
		return VariantSuccess
	}
}

// IsAlert reports whether the status should surface on the dashboard.
func (s Status) IsAlert() bool {
	return s == OutOfStock || s == LowStock
}
