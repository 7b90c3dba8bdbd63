package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mybest-backend/lib/cookiestore"
	"mybest-backend/lib/testutil"
)

func setupClient(t *testing.T, opts ClientOptions) *Client {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "elearning_core",
		DbSchema: cookiestore.Schema,
	})
	t.Cleanup(cleanup)

	opts.Store = cookiestore.NewStore(res.DB)
	client, err := NewClient(context.Background(), opts)
	require.NoError(t, err)
	return client
}

func TestFollowsRedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/masuk", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/sch", http.StatusFound)
	})
	mux.HandleFunc("/sch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>jadwal kuliah</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := setupClient(t, ClientOptions{BaseUrl: server.URL})

	html, err := client.Page(context.Background(), "/masuk")
	require.NoError(t, err)
	require.Contains(t, html, "jadwal kuliah")
}

func TestRedirectLoopIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		},
	))
	defer server.Close()

	client := setupClient(t, ClientOptions{BaseUrl: server.URL})

	_, err := client.Page(context.Background(), "/loop")
	require.ErrorIs(t, err, ErrNetwork)
	require.Contains(t, err.Error(), "redirect chain")
}

func TestTlsFailureClassified(t *testing.T) {
	// a plain http listener answers the tls handshake with http text,
	// which should surface as ErrTls rather than a generic failure
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {},
	))
	defer server.Close()

	httpsUrl := strings.Replace(server.URL, "http://", "https://", 1)
	client := setupClient(t, ClientOptions{
		BaseUrl:         httpsUrl,
		FallbackBaseUrl: httpsUrl,
	})

	_, err := client.Page(context.Background(), "/login")
	require.ErrorIs(t, err, ErrTls)
}

func TestProtocolFallback(t *testing.T) {
	var fallbackHits int
	working := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			fallbackHits++
			fmt.Fprint(w, "<html>halaman login</html>")
		},
	))
	defer working.Close()

	broken := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {},
	))
	defer broken.Close()
	brokenHttps := strings.Replace(broken.URL, "http://", "https://", 1)

	client := setupClient(t, ClientOptions{
		BaseUrl:         brokenHttps,
		FallbackBaseUrl: working.URL,
	})

	html, err := client.PageWithFallback(context.Background(), "/login")
	require.NoError(t, err)
	require.Contains(t, html, "halaman login")

	// the fallback does not become the new base
	require.Equal(t, brokenHttps, client.BaseUrl())

	_, err = client.PageWithFallback(context.Background(), "/login")
	require.NoError(t, err)
	require.Equal(t, 2, fallbackHits)
}

func TestSessionCookiePersisted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:   cookiestore.SessionCookieName,
			Value:  "abc",
			MaxAge: 3600,
		})
		fmt.Fprint(w, "<html>ok</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := setupClient(t, ClientOptions{BaseUrl: server.URL})

	_, err := client.Page(context.Background(), "/login")
	require.NoError(t, err)

	host, err := url.Parse(server.URL)
	require.NoError(t, err)
	hasSession, err := client.Store.HasSession(context.Background(), host.Hostname())
	require.NoError(t, err)
	require.True(t, hasSession)
}

func TestResolve(t *testing.T) {
	client := setupClient(t, ClientOptions{BaseUrl: "https://elearning.bsi.ac.id"})
	require.Equal(t,
		"https://elearning.bsi.ac.id/absen-mhs/xyz",
		client.Resolve("/absen-mhs/xyz"),
	)
}

func TestClassifyNil(t *testing.T) {
	require.NoError(t, classifyTransportErr(nil))
	require.False(t, errors.Is(classifyTransportErr(errors.New("boom")), ErrTls))
}
