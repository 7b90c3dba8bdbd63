package elearning

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"mybest-backend/lib/cookiestore"
	"mybest-backend/lib/scrapers/elearning/core"
	"mybest-backend/lib/testutil"
)

const loginPageHtml = `<html>
<head><meta name="csrf-token" content="abc123"></head>
<body>
<form method="POST" action="/login">
    <input type="text" name="username" placeholder="NIM">
    <input type="password" name="password">
    <label>Berapa hasil dari 6 x 7?</label>
    <input type="text" name="captcha_answer">
</form>
</body>
</html>`

const dashboardHtml = `<html><body><h1>Dashboard Mahasiswa</h1></body></html>`

func setupTestClient(t *testing.T, handler http.Handler) *Client {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "elearning",
		DbSchema: cookiestore.Schema,
	})
	t.Cleanup(cleanup)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	coreClient, err := core.NewClient(context.Background(), core.ClientOptions{
		BaseUrl:         server.URL,
		FallbackBaseUrl: server.URL,
		Store:           cookiestore.NewStore(res.DB),
	})
	require.NoError(t, err)
	return NewClient(coreClient)
}

func newFakePortal(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:   cookiestore.SessionCookieName,
			Value:  "pre-auth",
			MaxAge: 7200,
		})
		fmt.Fprint(w, loginPageHtml)
	})
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("_token") != "abc123" ||
			r.PostForm.Get("captcha_answer") != "42" {
			// laravel's "page expired" csrf failure
			w.WriteHeader(419)
			return
		}
		if r.PostForm.Get("username") == "12345678" &&
			r.PostForm.Get("password") == "rahasia" {
			http.SetCookie(w, &http.Cookie{
				Name:   cookiestore.SessionCookieName,
				Value:  "authed",
				MaxAge: 7200,
			})
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookiestore.SessionCookieName)
		if err != nil || cookie.Value != "authed" {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		fmt.Fprint(w, dashboardHtml)
	})
	return mux
}

func TestLoginFlow(t *testing.T) {
	client := setupTestClient(t, newFakePortal(t))
	ctx := context.Background()

	err := client.Login(ctx, "12345678", "rahasia")
	require.NoError(t, err)

	ok, err := client.CheckSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginChallengeSolved(t *testing.T) {
	client := setupTestClient(t, newFakePortal(t))

	challenge, err := client.LoginPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc123", challenge.CsrfToken)
	require.Equal(t, "6 x 7", challenge.CaptchaQuestion)
	require.Equal(t, 42, challenge.CaptchaAnswer)
	require.True(t, challenge.Solved)
}

func TestLoginWrongPassword(t *testing.T) {
	client := setupTestClient(t, newFakePortal(t))

	err := client.Login(context.Background(), "12345678", "salah")
	require.ErrorIs(t, err, ErrCredentialRejected)
}

func TestLoginCaptchaUnsolvable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>
<head><meta name="csrf-token" content="abc123"></head>
<body>
<input type="text" name="username">
<input type="password" name="password">
<label>Berapa hasil dari 5 / 0?</label>
<input type="text" name="captcha_answer">
</body></html>`)
	})
	client := setupTestClient(t, mux)

	err := client.Login(context.Background(), "12345678", "rahasia")
	require.ErrorIs(t, err, ErrCaptchaUnsolvable)
}

func TestCheckSessionWithoutCookie(t *testing.T) {
	var dashboardHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		dashboardHits++
	})
	client := setupTestClient(t, mux)

	ok, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, dashboardHits)
}

func TestScheduleSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPageHtml)
	})
	client := setupTestClient(t, mux)

	_, err := client.Schedule(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestLogoutClearsSession(t *testing.T) {
	client := setupTestClient(t, newFakePortal(t))
	ctx := context.Background()

	require.NoError(t, client.Login(ctx, "12345678", "rahasia"))

	require.NoError(t, client.Logout(ctx))

	ok, err := client.CheckSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
