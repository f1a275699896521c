package models

// ResultStatus is the availability state of a lab result entry.
type ResultStatus string

// ResultStatusAvailable is the only status the demo produces.
const ResultStatusAvailable ResultStatus = "Available"

// Biomarker is one row of a result entry.
type Biomarker struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// ResultEntry holds the results issued for an order.
type ResultEntry struct {
	OrderID   string       `json:"orderId"` // References Order.ID; not enforced
	Email     string       `json:"email"`
	CreatedAt string       `json:"createdAt"`
	Status    ResultStatus `json:"status"`
	Results   []Biomarker  `json:"results"`
}

// Clone returns a deep copy of the entry.
func (r ResultEntry) Clone() ResultEntry {
	rows := make([]Biomarker, len(r.Results))
	copy(rows, r.Results)
	r.Results = rows
	return r
}
