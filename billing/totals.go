package billing

import (
	"github.com/shopspring/decimal"
)

// Line is the arithmetic view of an invoice item.
type Line struct {
	Quantity  int
	UnitPrice float64
}

// Totals are the derived fields of an invoice.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	Total        float64 `json:"total"`
	TotalInWords string  `json:"totalInWords"`
}

// LineAmount returns quantity × unit price.
func LineAmount(l Line) float64 {
	return lineAmount(l).InexactFloat64()
}

// Subtotal sums the line amounts in sequence order.
func Subtotal(lines []Line) float64 {
	return subtotal(lines).InexactFloat64()
}

// Total adds fees and labour to the subtotal. Fees are not clamped: a
// negative value reduces the total.
func Total(lines []Line, deliveryFees, laborCost float64) float64 {
	return withFees(subtotal(lines), deliveryFees, laborCost).InexactFloat64()
}

// TotalInWords rounds total to the nearest whole franc (half away from zero)
// and spells it out.
func TotalInWords(total float64) (string, error) {
	return AmountToWords(decimal.NewFromFloat(total).Round(0).IntPart())
}

// ComputeTotals derives subtotal, total and the spelled-out total.
func ComputeTotals(lines []Line, deliveryFees, laborCost float64) (Totals, error) {
	sub := subtotal(lines)
	tot := withFees(sub, deliveryFees, laborCost)

	words, err := AmountToWords(tot.Round(0).IntPart())
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Subtotal:     sub.InexactFloat64(),
		Total:        tot.InexactFloat64(),
		TotalInWords: words,
	}, nil
}

func lineAmount(l Line) decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(lineAmount(l))
	}
	return sum
}

func withFees(sub decimal.Decimal, deliveryFees, laborCost float64) decimal.Decimal {
	return sub.Add(decimal.NewFromFloat(deliveryFees)).Add(decimal.NewFromFloat(laborCost))
}

// Sum adds amounts exactly, e.g. invoice totals for revenue figures.
func Sum(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum.InexactFloat64()
}
