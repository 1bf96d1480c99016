package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: first and last name are required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrRoleNotAssignable   = errors.New("user: role cannot be self-assigned")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
	ErrAlreadyFavorite     = errors.New("user: property already in favorites")
	ErrNotFavorite         = errors.New("user: property not in favorites")
)

type ID string

// Role is a closed enumeration; authorization sites switch on it
// exhaustively instead of comparing raw strings.
type Role string

const (
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// ParseRole maps external input to a known role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, nil
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           ID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Phone        string
	Avatar       string
	Favorites    []string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	List(ctx context.Context) ([]*User, error)
}

type CreateParams struct {
	ID           ID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Phone        string
	CreatedAt    time.Time
}

func New(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}

	role := params.Role
	if role == "" {
		role = RoleClient
	}
	switch role {
	case RoleClient, RoleOwner:
	case RoleAdmin:
		// Admin accounts are provisioned out of band, never at registration.
		return nil, ErrRoleNotAssignable
	default:
		return nil, ErrInvalidRole
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: params.PasswordHash,
		Role:         role,
		Phone:        strings.TrimSpace(params.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ProfileUpdate carries the only fields a user may change on their own
// profile. Role, email and password travel through dedicated paths.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
}

func (u *User) ApplyProfile(update ProfileUpdate, now time.Time) error {
	if update.FirstName != nil {
		name := strings.TrimSpace(*update.FirstName)
		if name == "" {
			return ErrNameRequired
		}
		u.FirstName = name
	}
	if update.LastName != nil {
		name := strings.TrimSpace(*update.LastName)
		if name == "" {
			return ErrNameRequired
		}
		u.LastName = name
	}
	if update.Phone != nil {
		u.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Avatar != nil {
		u.Avatar = strings.TrimSpace(*update.Avatar)
	}
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

func (u *User) AddFavorite(propertyID string, now time.Time) error {
	propertyID = strings.TrimSpace(propertyID)
	if u.IsFavorite(propertyID) {
		return ErrAlreadyFavorite
	}
	u.Favorites = append(u.Favorites, propertyID)
	u.touch(now)
	return nil
}

func (u *User) RemoveFavorite(propertyID string, now time.Time) error {
	propertyID = strings.TrimSpace(propertyID)
	for i, fav := range u.Favorites {
		if fav == propertyID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			u.touch(now)
			return nil
		}
	}
	return ErrNotFavorite
}

func (u *User) IsFavorite(propertyID string) bool {
	for _, fav := range u.Favorites {
		if fav == propertyID {
			return true
		}
	}
	return false
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
