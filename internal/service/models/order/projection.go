package order

// StatusView is the display-only projection of a status value: a human
// readable label and a CSS-agnostic color category. Customer and admin views
// render the same projection.
type StatusView struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ProjectStatus maps a fulfillment status to its display projection. Unknown
// values fall back to a neutral view instead of failing.
func ProjectStatus(s Status) StatusView {
	switch s {
	case StatusPending:
		return StatusView{Label: "Pending", Color: "yellow"}
	case StatusProcessing:
		return StatusView{Label: "Processing", Color: "blue"}
	case StatusShipped:
		return StatusView{Label: "Shipped", Color: "purple"}
	case StatusDelivered:
		return StatusView{Label: "Delivered", Color: "green"}
	case StatusCancelled:
		return StatusView{Label: "Cancelled", Color: "red"}
	case StatusRefunded:
		return StatusView{Label: "Refunded", Color: "gray"}
	default:
		return StatusView{Label: "Unknown", Color: "gray"}
	}
}

// ProjectPaymentStatus maps a payment status to its display projection.
func ProjectPaymentStatus(s PaymentStatus) StatusView {
	switch s {
	case PaymentPending:
		return StatusView{Label: "Payment pending", Color: "yellow"}
	case PaymentPaid:
		return StatusView{Label: "Paid", Color: "green"}
	case PaymentFailed:
		return StatusView{Label: "Payment failed", Color: "red"}
	case PaymentRefunded:
		return StatusView{Label: "Refunded", Color: "gray"}
	default:
		return StatusView{Label: "Unknown", Color: "gray"}
	}
}
