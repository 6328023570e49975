package models

import "time"

type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Phone        string `json:"phone,omitempty"`
	Specialty    string `json:"specialty,omitempty"`

	Role Role `json:"role"` // 'admin', 'practitioner' or 'secretary'

	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// SessionUser is the public profile of a user. It has no credential field so
// a session value can never leak one.
type SessionUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

type UserInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Role      Role   `json:"role" binding:"required"`
}

// UserUpdate holds the fields to change. Password is hashed by the store
// before it reaches the record.
type UserUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
	Role      *Role   `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

func NewUser(id string, in UserInput, passwordHash string, now time.Time) User {
	return User{
		ID:           id,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Phone:        in.Phone,
		Specialty:    in.Specialty,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    FormatDate(now),
	}
}

// Apply merges every field except Password.
func (u UserUpdate) Apply(user *User) {
	setString(&user.FirstName, u.FirstName)
	setString(&user.LastName, u.LastName)
	setString(&user.Email, u.Email)
	setString(&user.Phone, u.Phone)
	setString(&user.Specialty, u.Specialty)
	setBool(&user.IsActive, u.IsActive)
	if u.Role != nil {
		user.Role = *u.Role
	}
}

func (u User) Public() SessionUser {
	return SessionUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Specialty: u.Specialty,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func (u User) IsPractitioner() bool {
	return u.Role == RolePractitioner || u.Role == RoleAdmin
}
