package elearning

import (
	"errors"
	"fmt"
)

// ErrSessionExpired means the portal answered an authenticated request
// with its login page. The caller decides whether to re-login.
var ErrSessionExpired = errors.New("session expired")

// ErrCredentialRejected means the portal refused the nim/password pair.
var ErrCredentialRejected = errors.New("credentials rejected")

// ErrCaptchaUnsolvable means the login page's arithmetic captcha could
// not be extracted or evaluated. Retrying fetches a fresh question.
var ErrCaptchaUnsolvable = errors.New("captcha unsolvable")

// ParseError reports a page that loaded fine but no longer matches the
// markup the extractor expects. These usually mean the portal changed.
type ParseError struct {
	Op    string
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: could not extract %s", e.Op, e.Field)
}
