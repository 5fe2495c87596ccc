package models

import (
	"encoding/json"
	"math"
)

// Account is a login-capable advisor identity. Email is the natural key and
// is always stored trimmed and lower-cased.
type Account struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	IsDemo   bool   `json:"isDemo"`
}

// UnmarshalJSON decodes an account leniently: fields of the wrong JSON type
// decode as empty values, and an element that is not an object decodes as
// the zero Account. Sanitization then repairs or drops the entry while its
// neighbours survive.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = Account{}
		return nil
	}
	*a = Account{
		Email:    stringValue(raw["email"]),
		Password: stringValue(raw["password"]),
		Name:     stringValue(raw["name"]),
		Title:    stringValue(raw["title"]),
		IsDemo:   truthy(raw["isDemo"]),
	}
	return nil
}

// SignupInput is the self sign-up form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Title    string
}

// Session is the single active authenticated identity.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Title string `json:"title"`
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
