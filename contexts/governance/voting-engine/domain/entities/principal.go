package entities

import "strings"

// Principal is an authenticated actor identity (address-equivalent).
type Principal string

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsZero() bool {
	return strings.TrimSpace(string(p)) == ""
}

// NormalizePrincipal trims transport whitespace; principals are otherwise
// compared byte-for-byte.
func NormalizePrincipal(raw string) Principal {
	return Principal(strings.TrimSpace(raw))
}

// PrincipalSet is an insertion-ordered set persisted as a JSON array.
type PrincipalSet []Principal

func (s PrincipalSet) Contains(p Principal) bool {
	for _, item := range s {
		if item == p {
			return true
		}
	}
	return false
}

// Add returns the set with p appended unless already present.
func (s PrincipalSet) Add(p Principal) PrincipalSet {
	if s.Contains(p) {
		return s
	}
	return append(s, p)
}

// Remove returns a copy of the set without p.
func (s PrincipalSet) Remove(p Principal) PrincipalSet {
	out := make(PrincipalSet, 0, len(s))
	for _, item := range s {
		if item != p {
			out = append(out, item)
		}
	}
	return out
}

func (s PrincipalSet) Clone() PrincipalSet {
	if s == nil {
		return PrincipalSet{}
	}
	out := make(PrincipalSet, len(s))
	copy(out, s)
	return out
}

// NewPrincipalSet builds a set from raw values, dropping blanks and duplicates.
func NewPrincipalSet(values []Principal) PrincipalSet {
	out := make(PrincipalSet, 0, len(values))
	for _, value := range values {
		value = NormalizePrincipal(string(value))
		if value.IsZero() {
			continue
		}
		out = out.Add(value)
	}
	return out
}
