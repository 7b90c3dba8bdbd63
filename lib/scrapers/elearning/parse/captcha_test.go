package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCaptchaQuestion(t *testing.T) {
	question, ok := ExtractCaptchaQuestion(`<label>Berapa hasil dari 6 x 7?</label>`)
	require.True(t, ok)
	require.Equal(t, "6 x 7", question)

	// bare "expr ?" shape without the lead-in phrase
	question, ok = ExtractCaptchaQuestion(`<span>3 + 4 ?</span>`)
	require.True(t, ok)
	require.Equal(t, "3 + 4", question)

	// any math expression anywhere is the last resort
	question, ok = ExtractCaptchaQuestion(`<p>jawab 12 - 5 untuk lanjut</p>`)
	require.True(t, ok)
	require.Equal(t, "12 - 5", question)

	_, ok = ExtractCaptchaQuestion(`<p>tidak ada captcha di sini</p>`)
	require.False(t, ok)
}

func TestSolveCaptcha(t *testing.T) {
	cases := []struct {
		question string
		answer   int
	}{
		{"Berapa hasil dari 7 + 5?", 12},
		{"6 x 7", 42},
		{"6 X 7", 42},
		{"6 × 7", 42},
		{"9 - 4", 5},
		{"12 / 3", 4},
		{"12 ÷ 3", 4},
		{"12 : 3", 4},
	}
	for _, c := range cases {
		answer, ok := SolveCaptcha(c.question)
		require.True(t, ok, c.question)
		require.Equal(t, c.answer, answer, c.question)
	}
}

func TestSolveCaptchaUnsolvable(t *testing.T) {
	// division by zero must report unsolvable, not a default value
	_, ok := SolveCaptcha("9 / 0")
	require.False(t, ok)

	_, ok = SolveCaptcha("tidak ada angka")
	require.False(t, ok)

	_, ok = SolveCaptcha("")
	require.False(t, ok)
}
