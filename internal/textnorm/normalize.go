// Package textnorm normalizes user-entered setting values.
//
// Children type operators, difficulties and modes in many shapes
// ("x", "*", "3", "MITTEL"). Every function here maps such input to the
// canonical vocabulary of package domain and is idempotent: applying it
// to its own output returns the output unchanged.
package textnorm

import (
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// Result is the outcome of a normalization. When Recognized is false
// Value holds the trimmed input, passed through untouched.
type Result struct {
	Value      string
	Recognized bool
}

var operatorDigits = map[string]string{
	"1": domain.OpAdd,
	"2": domain.OpSubtract,
	"3": domain.OpMultiply,
	"4": domain.OpDivide,
}

var operatorSymbols = strings.NewReplacer(
	"x", domain.OpMultiply,
	"X", domain.OpMultiply,
	"*", domain.OpMultiply,
	"/", domain.OpDivide,
	":", domain.OpDivide,
	"−", domain.OpSubtract,
	"–", domain.OpSubtract,
)

// NormalizeOperatorToken maps one token to a canonical operator symbol.
// Tokens that do not denote an operator come back trimmed.
func NormalizeOperatorToken(tok string) string {
	t := strings.TrimSpace(tok)
	if t == "" {
		return t
	}
	if op, ok := operatorDigits[t]; ok {
		return op
	}
	if sym := operatorSymbols.Replace(t); domain.IsOperator(sym) {
		return sym
	}
	return t
}

// NormalizeOperators turns a free-form operator list such as "x, /" or
// "1 2" into a comma joined list of distinct canonical symbols in first
// seen order.
func NormalizeOperators(raw string) Result {
	var out []string
	seen := make(map[string]bool)
	for _, chunk := range strings.Split(raw, ",") {
		for _, part := range strings.Fields(chunk) {
			op := NormalizeOperatorToken(part)
			if !domain.IsOperator(op) || seen[op] {
				continue
			}
			seen[op] = true
			out = append(out, op)
		}
	}
	if len(out) == 0 {
		return Result{Value: strings.TrimSpace(raw)}
	}
	return Result{Value: strings.Join(out, ","), Recognized: true}
}

// NormalizeOperatorValue is NormalizeOperators without the recognition flag
func NormalizeOperatorValue(raw string) string {
	return NormalizeOperators(raw).Value
}

// NormalizeDifficulty maps digits and synonyms to a difficulty label
func NormalizeDifficulty(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "1", "leicht":
		return Result{Value: domain.DifficultyEasy, Recognized: true}
	case "2", "mittel":
		return Result{Value: domain.DifficultyMedium, Recognized: true}
	case "3", "schwer":
		return Result{Value: domain.DifficultyHard, Recognized: true}
	case "4", "extrem", "extrem schwer", "sehr schwer":
		return Result{Value: domain.DifficultyExtreme, Recognized: true}
	}
	return Result{Value: trimmed}
}

// Difficulty returns the normalized difficulty value
func Difficulty(raw string) string {
	return NormalizeDifficulty(raw).Value
}

// NormalizeMode maps the menu digits 1..6 to mode labels
func NormalizeMode(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if label, ok := domain.Modes[trimmed]; ok {
		return Result{Value: label, Recognized: true}
	}
	return Result{Value: trimmed}
}

// Mode returns the normalized mode value
func Mode(raw string) string {
	return NormalizeMode(raw).Value
}

// ForKey applies the normalizer that belongs to key. Keys without a
// dedicated normalizer are only trimmed.
func ForKey(key domain.Key, value string) string {
	switch key {
	case domain.KeyOperators:
		return NormalizeOperatorValue(value)
	case domain.KeyDifficulty:
		return Difficulty(value)
	case domain.KeyMode:
		return Mode(value)
	default:
		return strings.TrimSpace(value)
	}
}
