package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids             []int64         `json:"ids,omitempty"`
	UserIds         []int64         `json:"userIds,omitempty"`
	PaymentStatuses []PaymentStatus `json:"paymentStatuses,omitempty"`
	CreatedBefore   time.Time       `json:"createdBefore,omitempty"`
	Limit           int             `json:"limit,omitempty"`
	Offset          int             `json:"offset,omitempty"`
}
