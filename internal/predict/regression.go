package predict

import (
	"math"

	"sipwatch/internal/types"
)

// minRegressionSamples is the minimum number of daily rollups needed to fit
// the two-feature model without it being degenerate.
const minRegressionSamples = 3

// SpendModel is a fitted linear model
//
//	spend = TempCoef*meanTemp + StepsCoef*steps + Intercept
//
// trained per person on daily activity rollups.
type SpendModel struct {
	TempCoef  float64 `json:"temp_coef"`
	StepsCoef float64 `json:"steps_coef"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	Samples   int     `json:"samples"`
}

// Predict returns the expected spend, rounded to the nearest unit.
func (m *SpendModel) Predict(meanTempC float64, steps int) int {
	raw := m.TempCoef*meanTempC + m.StepsCoef*float64(steps) + m.Intercept
	return int(math.Round(raw))
}

// FitSpendModel fits the model by ordinary least squares over the daily
// rollups. The 3x3 normal equations are solved directly with Gaussian
// elimination; no numeric library is warranted for a fixed two-feature fit.
func FitSpendModel(days []types.DailyActivity) (*SpendModel, error) {
	if len(days) < minRegressionSamples {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidModel,
			"spend regression requires at least 3 daily samples", nil)
	}

	// Design matrix columns: [temp, steps, 1]. Accumulate X'X and X'y.
	var xtx [3][3]float64
	var xty [3]float64
	for _, d := range days {
		row := [3]float64{d.MeanTempC, float64(d.Steps), 1}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * d.Spend
		}
	}

	beta, ok := solve3(xtx, xty)
	if !ok {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidModel,
			"spend regression is degenerate (collinear or constant features)", nil)
	}

	model := &SpendModel{
		TempCoef:  beta[0],
		StepsCoef: beta[1],
		Intercept: beta[2],
		Samples:   len(days),
	}
	model.R2 = rSquared(days, model)
	return model, nil
}

// solve3 solves A x = b for a 3x3 system with partial pivoting. Returns
// ok=false when the system is singular.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	var x [3]float64

	for col := 0; col < 3; col++ {
		// Pivot on the largest magnitude entry in this column.
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return x, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < 3; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < 3; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	for i := 2; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < 3; j++ {
			sum -= a[i][j] * x[j]
		}
		x[i] = sum / a[i][i]
	}
	return x, true
}

// rSquared computes the coefficient of determination of the fitted model
// over its training data.
func rSquared(days []types.DailyActivity, m *SpendModel) float64 {
	var mean float64
	for _, d := range days {
		mean += d.Spend
	}
	mean /= float64(len(days))

	var ssTot, ssRes float64
	for _, d := range days {
		fitted := m.TempCoef*d.MeanTempC + m.StepsCoef*float64(d.Steps) + m.Intercept
		ssRes += (d.Spend - fitted) * (d.Spend - fitted)
		ssTot += (d.Spend - mean) * (d.Spend - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
