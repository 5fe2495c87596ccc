package models

// User represents a client managed by an advisor.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// UserPatch is a partial update of a User. Nil fields are left untouched.
type UserPatch struct {
	ID    string
	Name  *string
	Email *string
	Phone *string
}

// Apply merges the patch over u and returns the merged user.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	return u
}

// User returns the patch as a full record, with nil fields left empty.
func (p UserPatch) User() User {
	return p.Apply(User{ID: p.ID})
}
