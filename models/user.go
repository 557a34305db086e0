package models

// User represents the authenticated user and their wallet mirror. Balance and
// exposure are authoritative only from the backend's responses; the client
// never computes them locally.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Balance  float64 `json:"balance"`
	Exposure float64 `json:"exposure"`
	Currency string  `json:"currency"`
}

// Clone returns a copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
