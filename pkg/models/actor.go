package models

// Actor is the request-scoped tenant and identity context. It is resolved
// once from the JWT in middleware and passed by value through every service
// call; nothing in the core reads ambient identity state.
type Actor struct {
	OrganizationID int
	UserID         int
	Username       string
	IsAdmin        bool
}
