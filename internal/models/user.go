package models

// Field names the backend reads or writes on user documents.
const (
	FieldID           = "_id"
	FieldEmail        = "email"
	FieldRole         = "role"
	FieldPassword     = "password"
	FieldPasswordHash = "passwordHash"
)

// User is the typed view of a user document used by the auth gates.
type User struct {
	Email        string
	Role         string
	PasswordHash string
}

// UserFromDocument extracts the fields the auth gates care about.
func UserFromDocument(doc Document) User {
	return User{
		Email:        doc.String(FieldEmail),
		Role:         doc.String(FieldRole),
		PasswordHash: doc.String(FieldPasswordHash),
	}
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
