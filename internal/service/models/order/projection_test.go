package order

import "testing"

func TestProjectStatus(t *testing.T) {
	cases := []struct {
		status    Status
		wantLabel string
		wantColor string
	}{
		{StatusPending, "Pending", "yellow"},
		{StatusProcessing, "Processing", "blue"},
		{StatusShipped, "Shipped", "purple"},
		{StatusDelivered, "Delivered", "green"},
		{StatusCancelled, "Cancelled", "red"},
		{StatusRefunded, "Refunded", "gray"},
		{Status("SOMETHING_NEW"), "Unknown", "gray"},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			got := ProjectStatus(tc.status)
			if got.Label != tc.wantLabel || got.Color != tc.wantColor {
				t.Errorf("ProjectStatus(%s) = %+v, want {%s %s}", tc.status, got, tc.wantLabel, tc.wantColor)
			}
		})
	}
}

func TestProjectPaymentStatus_UnknownFallsBack(t *testing.T) {
	got := ProjectPaymentStatus(PaymentStatus("PARTIALLY_REFUNDED"))
	if got.Label != "Unknown" || got.Color != "gray" {
		t.Errorf("fallback = %+v, want {Unknown gray}", got)
	}
}
