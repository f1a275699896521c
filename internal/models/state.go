package models

// State is the full client state bag. Each field group is persisted under its own key.
type State struct {
	Cart         []CartItem    `json:"cart"`
	Orders       []Order       `json:"orders"`
	Results      []ResultEntry `json:"results"`
	User         *UserProfile  `json:"user"`
	Session      *Session      `json:"session"`
	Goal         Goal          `json:"goal"`
	PaymentEmail string        `json:"paymentEmail"`
}

// DefaultState returns the state of a client with no stored data.
func DefaultState() State {
	return State{
		Cart:    []CartItem{},
		Orders:  []Order{},
		Results: []ResultEntry{},
		Goal:    GoalAll,
	}
}

// Clone returns a deep copy so that snapshots handed to subscribers
// cannot alias the publisher's slices or pointers.
func (s State) Clone() State {
	out := State{
		Cart:         CloneCart(s.Cart),
		Orders:       make([]Order, len(s.Orders)),
		Results:      make([]ResultEntry, len(s.Results)),
		Goal:         s.Goal,
		PaymentEmail: s.PaymentEmail,
	}
	for i, o := range s.Orders {
		out.Orders[i] = o.Clone()
	}
	for i, r := range s.Results {
		out.Results[i] = r.Clone()
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Session != nil {
		sess := *s.Session
		out.Session = &sess
	}
	return out
}

// SessionEmail returns the signed-in email, or "" when signed out.
func (s State) SessionEmail() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Email
}

// PrefillEmail is the best known email for pre-filling forms:
// session first, then profile, then the last checkout email.
func (s State) PrefillEmail() string {
	if s.Session != nil && s.Session.Email != "" {
		return s.Session.Email
	}
	if s.User != nil && s.User.Email != "" {
		return s.User.Email
	}
	return s.PaymentEmail
}

// HasCartItem reports whether the cart holds a row for productID.
func (s State) HasCartItem(productID string) bool {
	for _, item := range s.Cart {
		if item.ID == productID {
			return true
		}
	}
	return false
}
