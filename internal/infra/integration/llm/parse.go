package llm

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ParseBudget normaliza qualquer formato de orçamento para o número
// cru: "5.5M" -> 5500000, "2.3 million" -> 2300000, "500K" -> 500000,
// "AED 3,500,000" -> 3500000. Valor irreconhecível vira 0.
func ParseBudget(raw string) int64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	// Limpa moeda e separadores
	s = strings.NewReplacer(",", "", "$", "", "£", "", "€", "", " ", "").Replace(s)

	multiplier := int64(1)
	switch {
	case strings.Contains(s, "MILLION") || strings.Contains(s, "M"):
		multiplier = 1_000_000
	case strings.Contains(s, "THOUSAND") || strings.Contains(s, "K"):
		multiplier = 1_000
	}

	match := numberPattern.FindString(s)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return int64(value * float64(multiplier))
}

var bedroomWords = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// ParseBedrooms aceita dígito ou por extenso ("three" -> 3).
func ParseBedrooms(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if n, ok := bedroomWords[s]; ok {
		return n
	}
	match := numberPattern.FindString(s)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
