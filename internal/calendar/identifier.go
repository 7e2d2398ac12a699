package calendar

import (
	"strconv"
	"strings"
)

// Identifier names one observance. Tokens in the rule tables carry their
// precedence class as a ":N" suffix ("sab_quadragesima_4:2"); lower N
// ranks higher. A token without a parsable suffix has no precedence and
// ranks below every classed identifier.
type Identifier struct {
	Name       string
	Precedence *int
}

// ParseIdentifier splits a rule-table token into name and precedence.
func ParseIdentifier(token string) Identifier {
	i := strings.LastIndexByte(token, ':')
	if i < 0 {
		return Identifier{Name: token}
	}
	class, err := strconv.Atoi(token[i+1:])
	if err != nil {
		return Identifier{Name: token}
	}
	return Identifier{Name: token[:i], Precedence: &class}
}

// String renders the identifier back to its token form.
func (id Identifier) String() string {
	if id.Precedence == nil {
		return id.Name
	}
	return id.Name + ":" + strconv.Itoa(*id.Precedence)
}

// HasPrecedence reports whether the identifier carries a precedence class.
func (id Identifier) HasPrecedence() bool {
	return id.Precedence != nil
}

// Matches reports whether id satisfies the query q. Names must be equal;
// the precedence is compared only when q carries one.
func (id Identifier) Matches(q Identifier) bool {
	if id.Name != q.Name {
		return false
	}
	if q.Precedence == nil {
		return true
	}
	return id.Precedence != nil && *id.Precedence == *q.Precedence
}

// outranks reports whether id ranks strictly above other.
func (id Identifier) outranks(other Identifier) bool {
	switch {
	case id.Precedence == nil:
		return false
	case other.Precedence == nil:
		return true
	default:
		return *id.Precedence < *other.Precedence
	}
}

// MarshalText encodes the identifier as its token.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a token.
func (id *Identifier) UnmarshalText(text []byte) error {
	*id = ParseIdentifier(string(text))
	return nil
}
