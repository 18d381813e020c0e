// Package scoring implements the purchase-propensity scoring model: the
// heat-index computation, the four factor scorers with their lookup tables,
// the indoor context adjustment, and the weighted composite engine.
package scoring

// NOAA heat index regression coefficients. The polynomial operates in
// Fahrenheit; inputs and outputs of HeatIndexC are Celsius.
const (
	hiC1 = -42.379
	hiC2 = 2.04901523
	hiC3 = 10.14333127
	hiC4 = -0.22475541
	hiC5 = -0.00683783
	hiC6 = -0.05481717
	hiC7 = 0.00122874
	hiC8 = 0.00085282
	hiC9 = -0.00000199
)

// lowHumidityCutoff is the relative humidity below which the regression is
// not meaningful and the raw input temperature is returned unchanged. The
// discontinuity at exactly 40 is intentional and load-bearing: downstream
// numeric tests depend on it.
const lowHumidityCutoff = 40.0

// HeatIndexC computes the apparent temperature in Celsius from the ambient
// temperature (Celsius) and relative humidity (percent).
//
// For humidity below 40 the polynomial is skipped entirely and the input
// temperature is returned as-is. The function never errors; NaN inputs
// propagate as NaN.
func HeatIndexC(tempC, humidityPct float64) float64 {
	if humidityPct < lowHumidityCutoff {
		return tempC
	}

	tf := tempC*9/5 + 32
	h := humidityPct

	hiF := hiC1 +
		hiC2*tf +
		hiC3*h +
		hiC4*tf*h +
		hiC5*tf*tf +
		hiC6*h*h +
		hiC7*tf*tf*h +
		hiC8*tf*h*h +
		hiC9*tf*tf*h*h

	return (hiF - 32) * 5 / 9
}
