package address

// Address is a structured postal address snapshot stored with an order.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// MissingFields returns the names of required fields that are empty.
func (a Address) MissingFields() []string {
	var missing []string

	required := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"address1", a.Address1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
	}

	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	return missing
}

// IsZero reports whether no field of the address is set.
func (a Address) IsZero() bool {
	return a == Address{}
}
