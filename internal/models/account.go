package models

// UserProfile is the single locally stored profile. Each registration overwrites it.
type UserProfile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	UpdatedAt string `json:"updatedAt"`
}

// Session marks the client as "signed in as" an email. It is not a credential.
type Session struct {
	Email      string `json:"email"`
	LoggedInAt string `json:"loggedInAt"`
}
