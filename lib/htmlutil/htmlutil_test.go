package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	node, err := html.Parse(strings.NewReader("<p>halo <b>dunia</b></p>"))
	require.NoError(t, err)
	require.Equal(t, "halo dunia", GetText(node))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Kode Dosen : DSN042", CleanText("  Kode Dosen :\n\t DSN042  "))
	require.Equal(t, "a b", CleanText("a\nb"))
	require.Equal(t, "", CleanText(" \n\t "))
}
