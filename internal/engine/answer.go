package engine

import (
	"regexp"
	"slices"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

var (
	decimalAnswer  = regexp.MustCompile(`^-?(\d+([.,]\d*)?|[.,]\d+)$`)
	fractionAnswer = regexp.MustCompile(`^-?\d+\s*/\s*-?\d+$`)
	namePattern    = regexp.MustCompile(`^[A-Za-zÄÖÜäöüß\- ]{1,20}$`)
)

// IsNumericAnswer reports whether s looks like a number a child may type:
// 12, -3, 2,5, 2.5 or 3/4.
func IsNumericAnswer(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if strings.Contains(t, "/") {
		return fractionAnswer.MatchString(t)
	}
	return decimalAnswer.MatchString(t)
}

// ValidName reports whether s is an acceptable player name
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

func sameAnswer(given, expected string) bool {
	return strings.ReplaceAll(given, ",", ".") == strings.ReplaceAll(expected, ",", ".")
}

// operatorsFromDigits maps every digit 1..4 in s to its operator,
// keeping first-seen order without duplicates.
func operatorsFromDigits(s string) []string {
	var ops []string
	for _, r := range s {
		if r < '1' || r > '4' {
			continue
		}
		op := operatorByDigit[r]
		if !slices.Contains(ops, op) {
			ops = append(ops, op)
		}
	}
	return ops
}

var operatorByDigit = map[rune]string{
	'1': domain.OpAdd,
	'2': domain.OpSubtract,
	'3': domain.OpMultiply,
	'4': domain.OpDivide,
}
