package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's practical limit.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// User represents a registered user of the roster directory.
// It contains identity details and the stored password credential.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Password       string    `json:"-"` // Plaintext password, held only during registration/updates
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given identity details.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. Returns a ValidationError if any field is invalid.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(email, password, firstName, lastName string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Password:  password, // Plaintext password - must be hashed before storage
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// FullName returns the user's display name, derived from the name fields.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks if the User has valid data. Every failing field is
// reported, not just the first one.
func (u *User) Validate() error {
	var fields []FieldError

	if u.ID == uuid.Nil {
		fields = append(fields, FieldError{Field: "id", Message: "cannot be empty"})
	}

	switch {
	case u.Email == "":
		fields = append(fields, FieldError{Field: "email", Message: "cannot be empty"})
	case !validEmailFormat(u.Email):
		fields = append(fields, FieldError{Field: "email", Message: "has invalid format"})
	}

	// A user must carry either a plaintext password awaiting hashing or an
	// already-stored hash (the case for users loaded from the database).
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			fields = append(fields, FieldError{Field: "password", Message: "is too short"})
		} else if len(u.Password) > MaxPasswordLength {
			fields = append(fields, FieldError{Field: "password", Message: "is too long"})
		}
	} else if u.HashedPassword == "" {
		fields = append(fields, FieldError{Field: "password", Message: "cannot be empty"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validEmailFormat performs basic structural validation of an email address:
// a non-empty local part, an @, and a domain containing an interior dot.
// Stricter RFC 5322 checks are left to the request validator's email rule.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
