package models

import (
	"encoding/json"
	"time"
)

// Identity is the authenticated user record returned by the backend. It is
// opaque to the storefront and kept verbatim.
type Identity json.RawMessage

func (i Identity) MarshalJSON() ([]byte, error) {
	if len(i) == 0 {
		return []byte("null"), nil
	}
	return i, nil
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	*i = append((*i)[:0], data...)
	return nil
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return len(i) == 0 || string(i) == "null"
}

// Email returns the "email" field of the record, if any.
func (i Identity) Email() string {
	var v struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(i, &v); err != nil {
		return ""
	}
	return v.Email
}

// Credentials is the admin login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the backend reply to a successful login.
type LoginResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

// Preference is one entry of the durable key-value storage that keeps the
// admin session across restarts.
type Preference struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
