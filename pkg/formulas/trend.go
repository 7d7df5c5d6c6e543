package formulas

import (
	"github.com/markcheno/go-talib"
)

// SMA returns the latest simple moving average over the given window,
// or nil when the series is shorter than the window.
func SMA(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}

	sma := talib.Sma(closes, window)
	if len(sma) == 0 {
		return nil
	}

	last := sma[len(sma)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// RSI returns the latest Relative Strength Index over the given period,
// or nil when there is insufficient data.
func RSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) == 0 {
		return nil
	}

	last := rsi[len(rsi)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
