package logging

import (
	"errors"
	"regexp"
	"strings"
)

// sensitivePatterns match credentials that can leak into error strings,
// typically through request URLs.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret|access[_-]?token|auth[_-]?token|token|password)=([^\s&"']+)`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),           // OpenAI keys
	regexp.MustCompile(`bot[0-9]{5,}:[A-Za-z0-9_-]{20,}`), // Telegram bot tokens in API URLs
}

// MaskCredential keeps the first and last four characters of long values.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// Redact masks credentials found in s.
func Redact(s string) string {
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllStringFunc(s, func(match string) string {
			if k, v, ok := strings.Cut(match, "="); ok {
				return k + "=" + MaskCredential(v)
			}
			return MaskCredential(match)
		})
	}
	return s
}

// RedactError returns err with credentials masked in its message. The
// result no longer wraps err.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if red := Redact(msg); red != msg {
		return errors.New(red)
	}
	return err
}
