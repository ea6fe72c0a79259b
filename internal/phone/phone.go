// Package phone applies the Moldovan and Ukrainian display masks used for
// client phone numbers.
package phone

import "strings"

type Country string

const (
	MD Country = "md" // +373 (XXX) XX-XXX
	UA Country = "ua" // +380 (XX) XXX-XX-XX
)

const (
	codeMD = "373"
	codeUA = "380"

	subscriberMD = 8
	subscriberUA = 9
)

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Detect picks the mask from the country code, defaulting to MD.
func Detect(digits string) Country {
	if strings.HasPrefix(digits, codeUA) {
		return UA
	}
	return MD
}

// Mask formats whatever has been typed so far, like an input mask: partial
// numbers give partial masks. An empty country is detected from the digits.
func Mask(s string, country Country) string {
	digits := Digits(s)
	if country == "" {
		country = Detect(digits)
	}

	code, limit := codeMD, subscriberMD
	if country == UA {
		code, limit = codeUA, subscriberUA
	}

	rest := digits
	switch {
	case strings.HasPrefix(rest, codeMD), strings.HasPrefix(rest, codeUA):
		rest = rest[3:]
		if !strings.HasPrefix(digits, code) {
			// an explicit country keeps a foreign code as typed
			code = digits[:3]
		}
	case strings.HasPrefix(rest, "0"):
		rest = rest[1:]
	}
	if len(rest) > limit {
		rest = rest[:limit]
	}

	if country == UA {
		return maskUA(code, rest)
	}
	return maskMD(code, rest)
}

// Format returns the full masked number, or "" when s does not hold a
// complete MD or UA number. A national number with a leading 0 is matched by
// its length.
func Format(s string) string {
	digits := Digits(s)
	switch {
	case strings.HasPrefix(digits, codeMD) && len(digits) == 3+subscriberMD:
		return Mask(digits, MD)
	case strings.HasPrefix(digits, codeUA) && len(digits) == 3+subscriberUA:
		return Mask(digits, UA)
	case strings.HasPrefix(digits, "0") && len(digits) == 1+subscriberMD:
		return Mask(digits, MD)
	case strings.HasPrefix(digits, "0") && len(digits) == 1+subscriberUA:
		return Mask(digits, UA)
	}
	return ""
}

func maskMD(code, rest string) string {
	switch n := len(rest); {
	case n == 0:
		return "+" + code
	case n <= 3:
		return "+" + code + " (" + rest
	case n <= 5:
		return "+" + code + " (" + rest[:3] + ") " + rest[3:]
	default:
		return "+" + code + " (" + rest[:3] + ") " + rest[3:5] + "-" + rest[5:]
	}
}

func maskUA(code, rest string) string {
	switch n := len(rest); {
	case n == 0:
		return "+" + code
	case n <= 2:
		return "+" + code + " (" + rest
	case n <= 5:
		return "+" + code + " (" + rest[:2] + ") " + rest[2:]
	case n <= 7:
		return "+" + code + " (" + rest[:2] + ") " + rest[2:5] + "-" + rest[5:]
	default:
		return "+" + code + " (" + rest[:2] + ") " + rest[2:5] + "-" + rest[5:7] + "-" + rest[7:]
	}
}
