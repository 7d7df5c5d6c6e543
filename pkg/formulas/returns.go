package formulas

import "math"

// PercentChange returns the percent change from first to last, rounded to
// two decimals. A zero or missing base yields 0.
func PercentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return Round2((last - first) / first * 100)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateReturns converts prices to fractional period-over-period returns.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}
