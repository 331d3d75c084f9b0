package domain

import "time"

// Roles a user can hold
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User Model
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`                         // Primary key
	Username       string    `gorm:"size:30;uniqueIndex;not null" json:"username"` // Unique username
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`   // Unique email
	Password       string    `gorm:"not null" json:"-"`                            // Hashed password
	Role           string    `gorm:"size:20;not null;default:user" json:"role"`    // Role: user, moderator or admin
	ProfileImage   string    `gorm:"size:512" json:"profileImage"`                 // Public image URL
	ProfileImageID string    `gorm:"size:255" json:"-"`                            // Image provider reference
	Bio            string    `gorm:"type:text" json:"bio"`                         // Free text
	CreatedAt      time.Time `json:"createdAt"`                                    // Registration time
	UpdatedAt      time.Time `json:"-"`                                            // Last profile edit
}

// PublicUser is the subset of a user embedded in posts, comments and notifications
type PublicUser struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// Public strips the private fields of a user
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, ProfileImage: u.ProfileImage}
}

// IsStaff reports whether the user may use the moderation endpoints
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}
