package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Actor is the caller identity attached by the auth middleware.
type Actor struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

func (a Actor) CanAccess(userID string) bool {
	return a.IsAdmin || (a.ID != "" && a.ID == userID)
}

type UserSnapshot struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UserInput is the "user" field of a submitted order. The storefront sends
// either a bare identity string or an embedded object; exactly one of Ref
// and Snapshot is set after decoding.
type UserInput struct {
	Ref      string
	Snapshot *UserSnapshot
}

func (u UserInput) Empty() bool {
	return strings.TrimSpace(u.Ref) == "" && u.Snapshot == nil
}

type userObject struct {
	ID          string `json:"_id"`
	AltID       string `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
}

func (u *UserInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*u = UserInput{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		return json.Unmarshal(b, &u.Ref)
	case '{':
		var o userObject
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		u.Snapshot = &UserSnapshot{
			ID:    firstNonEmpty(o.ID, o.AltID),
			Name:  firstNonEmpty(o.Name, o.FullName),
			Email: o.Email,
			Phone: firstNonEmpty(o.Phone, o.PhoneNumber),
		}
		return nil
	}
	return errors.New("user must be an id or an object")
}

func (u UserInput) MarshalJSON() ([]byte, error) {
	if u.Snapshot != nil {
		return json.Marshal(u.Snapshot)
	}
	if u.Ref == "" {
		return []byte("null"), nil
	}
	return json.Marshal(u.Ref)
}

// ObjectRef decodes a reference sent either as a plain string or as an
// object carrying _id.
type ObjectRef string

func (r *ObjectRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = ""
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '{' {
		var o struct {
			ID    string `json:"_id"`
			AltID string `json:"id"`
		}
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		*r = ObjectRef(firstNonEmpty(o.ID, o.AltID))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("reference must be a string or an object with _id")
	}
	*r = ObjectRef(s)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
