package entities

import "time"

// MaxUsernameLength bounds User.Username, matching the column size.
const MaxUsernameLength = 24

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

type User struct {
	Username     string   `gorm:"primaryKey;size:24" json:"username"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:'member'" json:"role"`

	// Reading is the title of the book the user is currently reading, nil when idle.
	Reading     *string `gorm:"size:512;index" json:"reading,omitempty"`
	ReadingBook *Book   `gorm:"foreignKey:Reading;references:Title;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the privileged role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// IsReading reports whether the user has a current book.
func (u *User) IsReading() bool {
	return u != nil && u.Reading != nil && *u.Reading != ""
}
