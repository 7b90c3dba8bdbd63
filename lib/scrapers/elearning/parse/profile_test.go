package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/profile.html
var profileFixture string

func TestParseProfile(t *testing.T) {
	profile, ok := ParseProfile(profileFixture)
	require.True(t, ok)
	require.Equal(t, "Budi Santoso", profile.Name)
	require.Equal(t, "budi@example.com", profile.Email)
}

func TestParseProfileMissingName(t *testing.T) {
	_, ok := ParseProfile(`<form><input name="email" value="a@b.c"></form>`)
	require.False(t, ok)
}
