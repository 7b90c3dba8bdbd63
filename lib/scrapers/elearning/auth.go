package elearning

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"mybest-backend/lib/scrapers/elearning/parse"
)

// LoginChallenge is everything the login page demands before it will
// accept credentials: a csrf token and a solved arithmetic captcha.
// Tokens are single-use, so a challenge must be spent right away.
type LoginChallenge struct {
	CsrfToken       string
	CaptchaQuestion string
	CaptchaAnswer   int
	Solved          bool
}

// LoginPage fetches a fresh login challenge.
func (c *Client) LoginPage(ctx context.Context) (LoginChallenge, error) {
	ctx, span := tracer.Start(ctx, "LoginPage")
	defer span.End()

	html, err := c.Core.PageWithFallback(ctx, "/login")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return LoginChallenge{}, err
	}

	token := parse.ExtractCsrfToken(html)
	if token == "" {
		err := &ParseError{Op: "login page", Field: "csrf token"}
		span.SetStatus(codes.Error, err.Error())
		return LoginChallenge{}, err
	}

	challenge := LoginChallenge{CsrfToken: token}
	question, ok := parse.ExtractCaptchaQuestion(html)
	if !ok {
		return challenge, nil
	}
	challenge.CaptchaQuestion = question
	challenge.CaptchaAnswer, challenge.Solved = parse.SolveCaptcha(question)
	return challenge, nil
}

// Login authenticates with the portal. It fetches a fresh challenge,
// solves the captcha and posts the credentials; on success the session
// cookie lands in the persistent jar as a side effect.
func (c *Client) Login(ctx context.Context, nim string, password string) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	challenge, err := c.LoginPage(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "challenge failed")
		span.RecordError(err)
		return err
	}
	if challenge.CaptchaQuestion == "" {
		return fmt.Errorf("%w: no question on the login page", ErrCaptchaUnsolvable)
	}
	if !challenge.Solved {
		return fmt.Errorf("%w: %q", ErrCaptchaUnsolvable, challenge.CaptchaQuestion)
	}

	res, err := c.Core.PostForm(ctx, "/login", map[string]string{
		"_token":         challenge.CsrfToken,
		"username":       nim,
		"password":       password,
		"captcha_answer": strconv.Itoa(challenge.CaptchaAnswer),
	}, map[string]string{
		"Referer": c.Core.Resolve("/login"),
	})
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return err
	}

	if location := res.Header().Get("Location"); location != "" {
		if strings.Contains(location, "login") {
			return ErrCredentialRejected
		}
		// materialize the landing page so any follow-up cookies stick
		_, err := c.Core.Page(ctx, location)
		if err != nil {
			slog.WarnContext(ctx, "post-login redirect failed", "err", err)
		}
		return nil
	}

	body := res.String()
	if parse.IsLoginPage(body) {
		message := parse.ExtractLoginError(body)
		if message == "" {
			return ErrCredentialRejected
		}
		return fmt.Errorf("%w: %s", ErrCredentialRejected, message)
	}
	return nil
}

// Logout tells the portal goodbye and wipes the local session either
// way. A dead network must not be able to strand a stale session.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	err := c.postLogout(ctx)
	if err != nil {
		slog.WarnContext(ctx, "logout request failed, clearing local session anyway", "err", err)
	}
	return c.Core.Store.Clear(ctx)
}

func (c *Client) postLogout(ctx context.Context) error {
	html, err := c.Core.PageWithFallback(ctx, "/dashboard")
	if err != nil {
		return err
	}
	token := parse.ExtractCsrfToken(html)
	if token == "" {
		return &ParseError{Op: "logout", Field: "csrf token"}
	}

	_, err = c.Core.PostForm(ctx, "/logout", map[string]string{
		"_token": token,
	}, map[string]string{
		"Referer": c.Core.Resolve("/dashboard"),
	})
	return err
}

// CheckSession reports whether the stored session is still accepted by
// the portal. A missing cookie short-circuits without a request.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "CheckSession")
	defer span.End()

	hasCookie, err := c.Core.Store.HasSession(ctx, c.host())
	if err != nil {
		span.SetStatus(codes.Error, "cookie lookup failed")
		span.RecordError(err)
		return false, err
	}
	if !hasCookie {
		return false, nil
	}

	html, err := c.Core.PageWithFallback(ctx, "/dashboard")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return false, err
	}
	return !parse.IsLoginPage(html), nil
}
