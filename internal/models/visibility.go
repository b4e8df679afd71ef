package models

import (
	"errors"
	"fmt"
	"strings"
)

// Visibility controls who can see a recipe.
type Visibility string

const (
	VisibilityPublic      Visibility = "Public"
	VisibilityFriendsOnly Visibility = "Friends Only"
	VisibilityPrivate     Visibility = "Private"
)

// ErrInvalidVisibility is returned when a name is not a known visibility.
var ErrInvalidVisibility = errors.New("invalid visibility")

var visibilities = []Visibility{
	VisibilityPublic,
	VisibilityFriendsOnly,
	VisibilityPrivate,
}

// ListNames returns the names of every visibility in declaration order.
func ListNames() []string {
	names := make([]string, len(visibilities))
	for i, v := range visibilities {
		names[i] = string(v)
	}
	return names
}

// ParseVisibility resolves a name case-insensitively.
func ParseVisibility(name string) (Visibility, error) {
	trimmed := strings.TrimSpace(name)
	for _, v := range visibilities {
		if strings.EqualFold(string(v), trimmed) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVisibility, name)
}

// IsValidVisibility reports whether name parses to a known visibility.
func IsValidVisibility(name string) bool {
	_, err := ParseVisibility(name)
	return err == nil
}

func (v Visibility) String() string {
	return string(v)
}
