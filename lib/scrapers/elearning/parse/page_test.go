package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/login.html
var loginFixture string

func TestExtractCsrfToken(t *testing.T) {
	require.Equal(t, "abc123", ExtractCsrfToken(loginFixture))

	// hidden input fallback when the meta tag is missing
	token := ExtractCsrfToken(`<form><input type="hidden" name="_token" value="xyz789"></form>`)
	require.Equal(t, "xyz789", token)

	require.Equal(t, "", ExtractCsrfToken(`<p>no token here</p>`))
}

func TestIsLoginPage(t *testing.T) {
	require.True(t, IsLoginPage(loginFixture))

	// username alone is not enough
	require.False(t, IsLoginPage(`<form><input name="username"></form>`))

	// username + password
	require.True(t, IsLoginPage(
		`<form><input name="username"><input type="password" name="password"></form>`,
	))

	// username + captcha marker text, no password field
	require.True(t, IsLoginPage(
		`<form><input name="username"><p>Berapa hasil dari 2 + 2?</p></form>`,
	))

	// password alone is not a login page either
	require.False(t, IsLoginPage(
		`<form><input type="password" name="password"></form>`,
	))

	require.False(t, IsLoginPage(`<p>halaman yang menyebut username saja</p>`))
}

func TestExtractLoginError(t *testing.T) {
	msg := ExtractLoginError(`<div class="alert alert-danger">NIM atau password salah</div>`)
	require.Equal(t, "NIM atau password salah", msg)

	require.Equal(t, "", ExtractLoginError(`<div>semua beres</div>`))
}

func TestExtractMessages(t *testing.T) {
	require.Equal(
		t, "Data berhasil disimpan",
		ExtractSuccessMessage(`<div class="alert-success">Data berhasil disimpan</div>`),
	)
	require.Equal(t, "", ExtractSuccessMessage(`<div></div>`))

	require.Equal(
		t, "Terjadi kesalahan",
		ExtractErrorMessage(`<div></div>`, "Terjadi kesalahan"),
	)
}
