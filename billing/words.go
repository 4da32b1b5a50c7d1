package billing

import (
	"errors"
	"fmt"
	"strings"
)

// CurrencySuffix is appended to every non-zero amount spelled out by AmountToWords.
const CurrencySuffix = "francs CFA"

// ZeroWord is returned as-is for a zero amount (no currency suffix).
const ZeroWord = "zéro"

// MaxWordsAmount is the largest amount the four chunk tiers can spell out.
const MaxWordsAmount int64 = 999_999_999_999

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAmountTooLarge = errors.New("amount exceeds the milliard tier")
)

var unitWords = [20]string{
	"", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize", "dix-sept",
	"dix-huit", "dix-neuf",
}

var tensWords = [10]string{
	"", "", "vingt", "trente", "quarante", "cinquante", "soixante", "soixante-dix", "quatre-vingts", "quatre-vingt-dix",
}

// tierWords are invariant: "million" and "milliard" never take a plural s.
var tierWords = [4]string{"", "mille", "million", "milliard"}

// AmountToWords spells out a whole CFA amount in French.
//
// The rules are fixed output contracts, not standard orthography: no "et"
// conjunction (21 → "vingt-un"), the 70s and 90s chain the preceding tens word
// with the 10–19 word (71 → "soixante-onze", 91 → "quatre-vingts-onze"),
// "cent" is never pluralised and 1000 is "mille" without a leading "un".
func AmountToWords(amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	if amount > MaxWordsAmount {
		return "", fmt.Errorf("%w: %d", ErrAmountTooLarge, amount)
	}
	if amount == 0 {
		return ZeroWord, nil
	}

	var chunks []string
	for tier := 0; amount > 0; tier++ {
		if words := chunkWords(int(amount%1000), tier); words != "" {
			chunks = append(chunks, words)
		}
		amount /= 1000
	}

	// chunks were collected least-significant first
	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	return strings.TrimSpace(strings.Join(chunks, " ")) + " " + CurrencySuffix, nil
}

func chunkWords(n, tier int) string {
	if n == 0 {
		return ""
	}
	if n == 1 && tier == 1 {
		return tierWords[1]
	}
	words := hundredsWords(n)
	if tier > 0 {
		words += " " + tierWords[tier]
	}
	return words
}

// hundredsWords renders 1..999; zero renders as an empty string.
func hundredsWords(n int) string {
	var b strings.Builder

	if n >= 100 {
		h := n / 100
		if h == 1 {
			b.WriteString("cent")
		} else {
			b.WriteString(unitWords[h])
			b.WriteString("-cent")
		}
		n %= 100
		if n > 0 {
			b.WriteByte('-')
		}
	}

	switch {
	case n >= 20:
		t, u := n/10, n%10
		switch {
		case t == 7 || t == 9:
			b.WriteString(tensWords[t-1])
			b.WriteByte('-')
			b.WriteString(unitWords[u+10])
		case u == 0:
			b.WriteString(tensWords[t])
		case t == 8:
			b.WriteString(strings.TrimSuffix(tensWords[t], "s"))
			b.WriteByte('-')
			b.WriteString(unitWords[u])
		default:
			b.WriteString(tensWords[t])
			b.WriteByte('-')
			b.WriteString(unitWords[u])
		}
	case n > 0:
		b.WriteString(unitWords[n])
	}

	return b.String()
}
