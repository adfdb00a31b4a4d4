package model

// Viewer is the identity a memo read is evaluated against.
// An admin is an authenticated viewer and gets no extra read rights on memos.
type Viewer struct {
	UserID        uint
	Username      string
	Role          UserRole
	Authenticated bool
}

func AnonymousViewer() Viewer {
	return Viewer{}
}

func AuthenticatedViewer(userID uint, username string, role UserRole) Viewer {
	return Viewer{
		UserID:        userID,
		Username:      username,
		Role:          role,
		Authenticated: true,
	}
}

func (v Viewer) IsAdmin() bool {
	return v.Authenticated && v.Role == RoleAdmin
}

// Owns reports whether the viewer is the memo's owner.
func (v Viewer) Owns(memo *Memo) bool {
	return v.Authenticated && memo != nil && memo.UserID == v.UserID
}

// CanView is the single-memo admission predicate: PUBLIC or owned.
func (v Viewer) CanView(memo *Memo) bool {
	if memo == nil {
		return false
	}
	return memo.Visibility == VisibilityPublic || v.Owns(memo)
}
