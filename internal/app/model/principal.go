package model

// Principal is the acting user of a request. The zero value is anonymous.
type Principal struct {
	UserID uint
	Role   UserRole
}

func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

// IsAuthor reports whether the principal is the given author
func (p Principal) IsAuthor(authorID uint) bool {
	return !p.IsAnonymous() && p.UserID == authorID
}
