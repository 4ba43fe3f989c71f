package services

import (
	"fmt"
	"math"
	"strings"
)

// AmountInWords spells out an amount for printed statements.
// Example: 1500.50, "NGN" -> "ONE THOUSAND FIVE HUNDRED NGN AND 50/100"
func AmountInWords(amount float64, currency string) string {
	cents := int64(math.Round(amount * 100))
	negative := cents < 0
	if negative {
		cents = -cents
	}

	words := numberToWords(cents / 100)
	if negative {
		words = "MINUS " + words
	}
	return fmt.Sprintf("%s %s AND %02d/100", words, currency, cents%100)
}

func numberToWords(n int64) string {
	if n == 0 {
		return "ZERO"
	}

	switch {
	case n < 20:
		return smallNumbers[n]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + "-" + smallNumbers[n%10]
	case n < 1000:
		return joinScale(n/100, "HUNDRED", n%100)
	case n < 1_000_000:
		return joinScale(n/1000, "THOUSAND", n%1000)
	case n < 1_000_000_000:
		return joinScale(n/1_000_000, "MILLION", n%1_000_000)
	case n < 1_000_000_000_000:
		return joinScale(n/1_000_000_000, "BILLION", n%1_000_000_000)
	}
	return "AMOUNT TOO LARGE"
}

func joinScale(count int64, scale string, remainder int64) string {
	parts := []string{numberToWords(count), scale}
	if remainder > 0 {
		parts = append(parts, numberToWords(remainder))
	}
	return strings.Join(parts, " ")
}

var smallNumbers = []string{
	"", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE",
	"TEN", "ELEVEN", "TWELVE", "THIRTEEN", "FOURTEEN", "FIFTEEN", "SIXTEEN",
	"SEVENTEEN", "EIGHTEEN", "NINETEEN",
}

var tensWords = []string{
	"", "", "TWENTY", "THIRTY", "FORTY", "FIFTY", "SIXTY", "SEVENTY", "EIGHTY", "NINETY",
}
