package predict

import (
	"time"
)

// DayType buckets dates for the weekday step model. Holidays override the
// plain weekday.
type DayType string

const (
	DayMonday    DayType = "monday"
	DayTuesday   DayType = "tuesday"
	DayWednesday DayType = "wednesday"
	DayThursday  DayType = "thursday"
	DayFriday    DayType = "friday"
	DaySaturday  DayType = "saturday"
	DaySunday    DayType = "sunday"
	DayHoliday   DayType = "holiday"
)

// defaultBaseSteps is the reference daily step count the weights scale.
const defaultBaseSteps = 8000

// defaultDayWeights encode the observed weekly activity rhythm: active
// starts of the week, a Friday dip, active Saturdays, restful Sundays.
var defaultDayWeights = map[DayType]float64{
	DayMonday:    1.2,
	DayTuesday:   1.1,
	DayWednesday: 1.0,
	DayThursday:  1.1,
	DayFriday:    0.9,
	DaySaturday:  1.3,
	DaySunday:    0.8,
	DayHoliday:   0.7,
}

// fixedHolidays is the month/day list treated as holidays regardless of
// weekday. A real holiday calendar would come from an API; these two cover
// the dataset we train on.
var fixedHolidays = map[[2]int]bool{
	{1, 1}:   true,
	{12, 25}: true,
}

// StepPrediction is one day of the weekly step forecast.
type StepPrediction struct {
	Date           time.Time `json:"date"`
	DayType        DayType   `json:"day_type"`
	PredictedSteps int       `json:"predicted_steps"`
	Weight         float64   `json:"weight"`
}

// WeekdayStepModel predicts daily step counts from the day of week,
// blending default weights with observed samples as they accumulate.
// It is not safe for concurrent mutation; fit it once, then share.
type WeekdayStepModel struct {
	samples map[DayType][]int
}

// NewWeekdayStepModel creates an empty model using the default weights.
func NewWeekdayStepModel() *WeekdayStepModel {
	return &WeekdayStepModel{samples: make(map[DayType][]int)}
}

// DayTypeOf classifies a date, with holidays taking precedence.
func DayTypeOf(date time.Time) DayType {
	if fixedHolidays[[2]int{int(date.Month()), date.Day()}] {
		return DayHoliday
	}
	switch date.Weekday() {
	case time.Monday:
		return DayMonday
	case time.Tuesday:
		return DayTuesday
	case time.Wednesday:
		return DayWednesday
	case time.Thursday:
		return DayThursday
	case time.Friday:
		return DayFriday
	case time.Saturday:
		return DaySaturday
	default:
		return DaySunday
	}
}

// AddSample records an observed daily step count for the date's bucket.
func (m *WeekdayStepModel) AddSample(date time.Time, steps int) {
	dt := DayTypeOf(date)
	m.samples[dt] = append(m.samples[dt], steps)
}

// Weight returns the effective weight for a day type. With no observations
// it is the default; otherwise the default is averaged with the ratio of
// the bucket's mean steps to the overall mean.
func (m *WeekdayStepModel) Weight(dt DayType) float64 {
	base := defaultDayWeights[dt]
	bucket := m.samples[dt]
	if len(bucket) == 0 {
		return base
	}

	var bucketSum, allSum float64
	var allCount int
	for _, s := range bucket {
		bucketSum += float64(s)
	}
	for _, samples := range m.samples {
		for _, s := range samples {
			allSum += float64(s)
			allCount++
		}
	}
	if allCount == 0 || allSum == 0 {
		return base
	}

	bucketAvg := bucketSum / float64(len(bucket))
	overallAvg := allSum / float64(allCount)
	return (base + bucketAvg/overallAvg) / 2
}

// PredictSteps forecasts the step count for a date from a base count.
// A base of zero uses the default.
func (m *WeekdayStepModel) PredictSteps(date time.Time, baseSteps int) int {
	if baseSteps <= 0 {
		baseSteps = defaultBaseSteps
	}
	return int(float64(baseSteps) * m.Weight(DayTypeOf(date)))
}

// WeeklyForecast predicts the seven days starting at start.
func (m *WeekdayStepModel) WeeklyForecast(start time.Time, baseSteps int) []StepPrediction {
	out := make([]StepPrediction, 0, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		dt := DayTypeOf(date)
		out = append(out, StepPrediction{
			Date:           date,
			DayType:        dt,
			PredictedSteps: m.PredictSteps(date, baseSteps),
			Weight:         m.Weight(dt),
		})
	}
	return out
}
