package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewer_CanView(t *testing.T) {
	public := &Memo{ID: 1, UserID: 7, Visibility: VisibilityPublic}
	private := &Memo{ID: 2, UserID: 7, Visibility: VisibilityPrivate}

	tests := []struct {
		name   string
		viewer Viewer
		memo   *Memo
		want   bool
	}{
		{name: "Anonymous sees public", viewer: AnonymousViewer(), memo: public, want: true},
		{name: "Anonymous cannot see private", viewer: AnonymousViewer(), memo: private, want: false},
		{name: "Owner sees own private", viewer: AuthenticatedViewer(7, "alice", RoleUser), memo: private, want: true},
		{name: "Other user cannot see private", viewer: AuthenticatedViewer(9, "bob", RoleUser), memo: private, want: false},
		{name: "Admin gets no extra rights", viewer: AuthenticatedViewer(1, "root", RoleAdmin), memo: private, want: false},
		{name: "Nil memo", viewer: AuthenticatedViewer(7, "alice", RoleUser), memo: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.viewer.CanView(tt.memo))
		})
	}
}

func TestViewer_AnonymousNeverOwns(t *testing.T) {
	// zero-value user id must not match an anonymous viewer
	memo := &Memo{UserID: 0, Visibility: VisibilityPrivate}
	assert.False(t, AnonymousViewer().Owns(memo))
	assert.False(t, AnonymousViewer().CanView(memo))
}
