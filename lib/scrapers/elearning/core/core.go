package core

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mybest-backend/lib/cookiestore"
	"mybest-backend/lib/restyutil"
)

const DefaultBaseUrl = "https://elearning.bsi.ac.id"

const requestTimeout = 30 * time.Second

// redirectCap bounds manual redirect chains. The portal never chains
// more than two hops in practice.
const redirectCap = 5

// Client is the transport layer underneath the portal scraper. It owns
// the http client, the persistent cookie jar and the http->https
// fallback, and knows nothing about what the pages mean.
type Client struct {
	Http  *resty.Client
	Store cookiestore.Store

	base     *url.URL
	fallback *url.URL
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// FallbackBaseUrl defaults to BaseUrl with the scheme flipped.
	// Some campus networks intercept https to this host, so the plain
	// http variant is kept as a last resort.
	FallbackBaseUrl string
	Store           cookiestore.Store
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var fallback *url.URL
	if opts.FallbackBaseUrl != "" {
		fallback, err = url.Parse(opts.FallbackBaseUrl)
		if err != nil {
			return nil, fmt.Errorf("parse fallback base url: %w", err)
		}
	} else {
		flipped := *base
		if flipped.Scheme == "https" {
			flipped.Scheme = "http"
		} else {
			flipped.Scheme = "https"
		}
		fallback = &flipped
	}

	client := resty.New().
		SetCookieJar(cookiestore.NewJar(opts.Store)).
		SetTimeout(requestTimeout).
		// the portal's certificate chain is routinely broken
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}).
		// redirects are followed manually so login 302s can be inspected
		SetRedirectPolicy(resty.RedirectPolicyFunc(
			func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		)).
		SetHeader("User-Agent", UserAgent()).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7")
	restyutil.InstrumentClient(client, tracer, deferredOutput{})

	return &Client{
		Http:     client,
		Store:    opts.Store,
		base:     base,
		fallback: fallback,
	}, nil
}

// BaseUrl reports the base every request is resolved against.
func (c *Client) BaseUrl() string {
	return c.base.String()
}

// Resolve joins a path with the current base url.
func (c *Client) Resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	return c.base.ResolveReference(ref).String()
}

// Page fetches a path and returns the final html after following
// redirects.
func (c *Client) Page(ctx context.Context, path string) (string, error) {
	ctx, span := tracer.Start(ctx, "Page", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	html, err := c.fetch(ctx, c.base, path, 0)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return "", err
	}
	return html, nil
}

// PageWithFallback behaves like Page but retries the request once
// against the fallback base when the primary fails outright. The
// fallback is never adopted as the new base, the next call starts from
// the primary again.
func (c *Client) PageWithFallback(ctx context.Context, path string) (string, error) {
	ctx, span := tracer.Start(ctx, "PageWithFallback", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	html, err := c.fetch(ctx, c.base, path, 0)
	if err == nil {
		return html, nil
	}

	slog.WarnContext(
		ctx, "primary base failed, retrying on fallback",
		"path", path,
		"fallback", c.fallback.String(),
		"err", err,
	)
	html, fallbackErr := c.fetch(ctx, c.fallback, path, 0)
	if fallbackErr != nil {
		span.SetStatus(codes.Error, "fetch failed on both bases")
		span.RecordError(err)
		return "", err
	}
	return html, nil
}

func (c *Client) fetch(ctx context.Context, base *url.URL, path string, depth int) (string, error) {
	if depth > redirectCap {
		return "", fmt.Errorf("%w: redirect chain exceeded %d hops", ErrNetwork, redirectCap)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	target := base.ResolveReference(ref)

	res, err := c.Http.R().SetContext(ctx).Get(target.String())
	if err != nil {
		return "", classifyTransportErr(err)
	}

	if location := redirectLocation(res); location != "" {
		next, err := target.Parse(location)
		if err != nil {
			return "", fmt.Errorf("parse redirect location %q: %w", location, err)
		}
		return c.fetch(ctx, base, next.String(), depth+1)
	}

	return res.String(), nil
}

// PostForm submits an urlencoded form. Redirect responses are handed
// back untouched since callers read meaning into them.
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, headers map[string]string) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx).SetFormData(fields)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	res, err := req.Post(c.Resolve(path))
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	return res, nil
}

// Get issues a single request without redirect handling, for the json
// endpoints that never redirect.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	res, err := req.Get(c.Resolve(path))
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	return res, nil
}

func redirectLocation(res *resty.Response) string {
	if res.StatusCode() < 300 || res.StatusCode() >= 400 {
		return ""
	}
	return res.Header().Get("Location")
}
