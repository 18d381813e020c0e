package types

import "time"

// ActivitySample is one hourly row from the activity table: a person's
// cumulative step count for the day, the ambient temperature, and the money
// spent on drinks so far that day. Steps and spend both reset at midnight.
type ActivitySample struct {
	Author     string    `json:"author"`
	TempC      float64   `json:"temp"`
	Steps      int       `json:"steps"`
	PaidAmount float64   `json:"paid_monney"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyActivity is the per-day rollup used by the spend predictors: the
// day's final (maximum) cumulative step count, the mean temperature, and the
// day's final cumulative spend.
type DailyActivity struct {
	Author    string    `json:"author"`
	Date      time.Time `json:"date"`
	Steps     int       `json:"steps"`
	MeanTempC float64   `json:"mean_temp_c"`
	Spend     float64   `json:"spend"`
}
