// internal/models/actor.go
package models

// Actor is the authenticated caller of a service operation. It is built by
// the auth middleware from the bearer token and passed explicitly, so every
// permission check is a function of its arguments.
type Actor struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the given user.
func (a Actor) Owns(userID uint) bool {
	return a.UserID != 0 && a.UserID == userID
}
