package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNames(t *testing.T) {
	assert.Equal(t, []string{"Public", "Friends Only", "Private"}, ListNames())

	names := ListNames()
	names[0] = "mutated"
	assert.Equal(t, "Public", ListNames()[0], "ListNames must return a copy")
}

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		in   string
		want Visibility
	}{
		{"Public", VisibilityPublic},
		{"private", VisibilityPrivate},
		{"  FRIENDS ONLY ", VisibilityFriendsOnly},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVisibility(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVisibilityRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "secret", "FriendsOnly"} {
		_, err := ParseVisibility(in)
		assert.True(t, errors.Is(err, ErrInvalidVisibility), in)
		assert.False(t, IsValidVisibility(in), in)
	}
}
