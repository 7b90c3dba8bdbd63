package core

import (
	"sync"

	browser "github.com/EDDYCJY/fake-useragent"
)

const fallbackUserAgent = "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

var uaOnce sync.Once
var userAgent string

// UserAgent picks a browser user agent once per process. The portal
// serves a stripped-down page to unknown agents, so presenting as a
// mobile browser matters.
func UserAgent() string {
	uaOnce.Do(func() {
		defer func() {
			if recover() != nil {
				userAgent = fallbackUserAgent
			}
		}()
		userAgent = browser.Android()
		if userAgent == "" {
			userAgent = fallbackUserAgent
		}
	})
	return userAgent
}
