package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// the login captcha is a natural-language arithmetic question rendered
// inline, e.g. "Berapa hasil dari 7 + 5?". extraction cascades from the
// phrase-anchored pattern down to any math expression in the document.
var captchaLeadInPattern = regexp.MustCompile(`(?i)Berapa hasil dari\s*(\d+\s*[+\-*/×÷xX]\s*\d+)`)
var captchaQuestionPattern = regexp.MustCompile(`(\d+\s*[+\-*/×÷xX]\s*\d+)\s*\?`)
var captchaBarePattern = regexp.MustCompile(`\d+\s*[+\-*/×÷xX]\s*\d+`)

func ExtractCaptchaQuestion(html string) (string, bool) {
	if groups := captchaLeadInPattern.FindStringSubmatch(html); len(groups) > 1 {
		return groups[1], true
	}
	if groups := captchaQuestionPattern.FindStringSubmatch(html); len(groups) > 1 {
		return groups[1], true
	}
	if match := captchaBarePattern.FindString(html); match != "" {
		return match, true
	}
	return "", false
}

var captchaExprPattern = regexp.MustCompile(`(\d+)([+\-*/])(\d+)`)

// SolveCaptcha evaluates the arithmetic question. It reports false on
// anything it cannot parse (including division by zero) rather than
// returning a guessed value; submitting a wrong answer silently
// corrupts the whole login attempt.
func SolveCaptcha(question string) (int, bool) {
	normalized := strings.NewReplacer(
		"×", "*",
		"x", "*",
		"X", "*",
		"÷", "/",
		":", "/",
		" ", "",
	).Replace(question)

	groups := captchaExprPattern.FindStringSubmatch(normalized)
	if len(groups) < 4 {
		return 0, false
	}

	a, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	b, err := strconv.Atoi(groups[3])
	if err != nil {
		return 0, false
	}

	switch groups[2] {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
	return 0, false
}
