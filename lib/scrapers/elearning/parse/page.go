package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func document(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// NewDocumentFromReader only fails on reader errors, which a
		// strings.Reader never produces
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}

// ExtractCsrfToken looks for the token in the meta tag first, then in a
// hidden form input. Empty string means the page carries no token.
func ExtractCsrfToken(html string) string {
	doc := document(html)
	return FirstMatch(
		func() string { return doc.Find("meta[name=csrf-token]").AttrOr("content", "") },
		func() string { return doc.Find("input[name=_token]").AttrOr("value", "") },
	)
}

// IsLoginPage detects the portal's login form. The username input alone
// is not enough, pages that merely mention usernames would false
// positive; a password field or the captcha marker must also be there.
func IsLoginPage(html string) bool {
	doc := document(html)

	if doc.Find("input[name=username]").Length() == 0 {
		return false
	}

	hasPassword := doc.Find("input[name=password]").Length() > 0
	hasCaptcha := doc.Find("input[name=captcha_answer]").Length() > 0 ||
		strings.Contains(strings.ToLower(html), "berapa hasil")

	return hasPassword || hasCaptcha
}

// ExtractLoginError scrapes the alert the portal renders after a
// rejected login.
func ExtractLoginError(html string) string {
	doc := document(html)
	return FirstMatch(
		func() string { return doc.Find(".alert-danger").Text() },
		func() string { return doc.Find(".text-danger").Text() },
	)
}

func ExtractErrorMessage(html string, defaultMessage string) string {
	doc := document(html)
	msg := FirstMatch(
		func() string { return doc.Find(".alert-danger").Text() },
		func() string { return doc.Find(".text-danger").Text() },
		func() string { return doc.Find(".error").Text() },
	)
	if msg == "" {
		return defaultMessage
	}
	return msg
}

func ExtractSuccessMessage(html string) string {
	doc := document(html)
	return FirstMatch(
		func() string { return doc.Find(".alert-success").Text() },
		func() string { return doc.Find(".text-success").Text() },
		func() string { return doc.Find(".success").Text() },
	)
}
