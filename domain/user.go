package domain

import (
	"time"

	"blog-backend/pkg/errors"
)

// Role is the authorization role assigned to a user.
type Role string

const (
	RoleSubscriber Role = "SUBSCRIBER"
	RoleAuthor     Role = "AUTHOR"
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleSubscriber, RoleAuthor, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User is an account synced from the external identity provider.
// The ID is the identity provider's subject id; this layer never
// generates user ids itself.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	IsBanned      bool       `json:"isBanned"`
	BanReason     string     `json:"banReason,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	AvatarURL     string     `json:"avatarUrl,omitempty"`
	PostsCount    int        `json:"postsCount"`
	CommentsCount int        `json:"commentsCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// UserDraft carries the fields required to create a user record,
// either on first sync from the identity provider or by admin action.
type UserDraft struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Bio       string
	AvatarURL string
}

// Validate checks required fields and normalizes defaults.
func (d *UserDraft) Validate() error {
	if d.ID == "" {
		return errors.NewValidationError("user id (identity provider subject) is required")
	}
	if d.Name == "" {
		return errors.NewValidationError("user name is required")
	}
	if d.Role == "" {
		d.Role = RoleSubscriber
	}
	if !d.Role.IsValid() {
		return errors.NewValidationError("unknown user role: " + string(d.Role))
	}
	return nil
}

// UserPatch is a partial update; nil fields are left unchanged.
type UserPatch struct {
	Email     *string
	Name      *string
	Role      *Role
	IsActive  *bool
	IsBanned  *bool
	BanReason *string
	Bio       *string
	AvatarURL *string
}

// Apply copies the set fields onto the user.
func (p *UserPatch) Apply(u *User) error {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		if !p.Role.IsValid() {
			return errors.NewValidationError("unknown user role: " + string(*p.Role))
		}
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsBanned != nil {
		u.IsBanned = *p.IsBanned
	}
	if p.BanReason != nil {
		u.BanReason = *p.BanReason
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	return nil
}
