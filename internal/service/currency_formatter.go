package service

import (
	"math"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"pricedesk/internal/domain"
)

const (
	// metalDecimals is the number of fractional digits shown for refined metal
	metalDecimals = 2

	emptyPriceText = "0 keys, 0 ref"
)

var decimalPlacesPattern = regexp.MustCompile(`(?:\.(\d+))?(?:[eE]([+-]?\d+))?$`)

// FormatCurrency renders a key/metal pair as display text, e.g. "2 keys, 12.33 ref".
// Metal is truncated to two decimals, never rounded up.
func FormatCurrency(amount domain.CurrencyAmount) string {
	text := ""

	if amount.Keys != 0 {
		text = formatNumber(amount.Keys) + " " + Plural("key", amount.Keys)
	}

	if amount.Metal != 0 {
		if text != "" {
			text += ", "
		}
		text += formatMetal(amount.Metal) + " ref"
	}

	if text == "" {
		return emptyPriceText
	}
	return text
}

// Plural returns word for a count of exactly one (in either sign), otherwise word + "s"
func Plural(word string, count float64) string {
	if math.Abs(count) == 1 {
		return word
	}
	return word + "s"
}

// DecimalPlaces counts the fractional digits of a numeric literal, adjusting for
// an exponent suffix: "1.25" -> 2, "1e-7" -> 7, "1.5e-3" -> 4, "2.5e+2" -> 0.
func DecimalPlaces(repr string) int {
	match := decimalPlacesPattern.FindStringSubmatch(repr)
	if match == nil {
		return 0
	}

	digits := len(match[1])
	exponent := 0
	if match[2] != "" {
		exp, err := strconv.Atoi(match[2])
		if err != nil {
			return 0
		}
		exponent = exp
	}

	return max(0, digits-exponent)
}

func formatMetal(metal float64) string {
	// Shortest round-trip representation, same digits the backend sent.
	repr := strconv.FormatFloat(metal, 'g', -1, 64)
	value := decimal.NewFromFloat(metal)

	if DecimalPlaces(repr) <= metalDecimals {
		return value.String()
	}
	return value.Truncate(metalDecimals).String()
}

func formatNumber(n float64) string {
	return decimal.NewFromFloat(n).String()
}
