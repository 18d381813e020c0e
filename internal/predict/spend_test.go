package predict

import (
	"math"
	"testing"

	"sipwatch/internal/types"
)

func TestRecommendDrink(t *testing.T) {
	p := NewRulePredictor()

	tests := []struct {
		temp     float64
		activity types.ActivityLevel
		want     DrinkType
	}{
		{32, types.ActivityHigh, DrinkSportsDrink},
		{32, types.ActivityIntense, DrinkSportsDrink},
		{32, types.ActivityLight, DrinkTea},
		{30, types.ActivityNone, DrinkTea},
		{25, types.ActivityHigh, DrinkSportsDrink},
		{25, types.ActivityLight, DrinkCoffee},
		{20, types.ActivityModerate, DrinkCoffee},
		{15, types.ActivityIntense, DrinkCoffee},
		{5, types.ActivityNone, DrinkCoffee},
	}
	for _, tt := range tests {
		if got := p.RecommendDrink(tt.temp, tt.activity); got != tt.want {
			t.Errorf("RecommendDrink(%v, %s) = %s, want %s", tt.temp, tt.activity, got, tt.want)
		}
	}
}

func TestPredict_HotStationScenario(t *testing.T) {
	p := NewRulePredictor()

	pred := p.Predict(Scenario{
		TemperatureC: 32,
		Activity:     types.ActivityHigh,
		LocationType: types.LocationStation,
		Hour:         14,
	})

	// 1.5 (>=30C) * 1.6 (high exertion) * 1.4 (station) = 3.36
	if math.Abs(pred.Multiplier-3.36) > 1e-9 {
		t.Errorf("multiplier = %v, want 3.36", pred.Multiplier)
	}
	if pred.Drink != DrinkSportsDrink {
		t.Errorf("drink = %s, want sports-drink", pred.Drink)
	}
	if pred.BasePrice != 180 {
		t.Errorf("base price = %d, want 180", pred.BasePrice)
	}
	if pred.PredictedAmount != 604 {
		t.Errorf("amount = %d, want 604", pred.PredictedAmount)
	}
	if pred.PurchaseProbability != 0.95 {
		t.Errorf("probability = %v, want capped at 0.95", pred.PurchaseProbability)
	}
}

func TestPredict_MildOfficeScenario(t *testing.T) {
	p := NewRulePredictor()

	pred := p.Predict(Scenario{
		TemperatureC: 25,
		Activity:     types.ActivityLight,
		LocationType: types.LocationOffice,
		Hour:         10,
	})

	// 1.2 (>=25C) * 1.0 (light) * 0.9 (office) = 1.08
	if math.Abs(pred.Multiplier-1.08) > 1e-9 {
		t.Errorf("multiplier = %v, want 1.08", pred.Multiplier)
	}
	if pred.Drink != DrinkCoffee {
		t.Errorf("drink = %s, want coffee", pred.Drink)
	}
	if pred.PredictedAmount != 162 {
		t.Errorf("amount = %d, want 162", pred.PredictedAmount)
	}
	if pred.PurchaseProbability >= 0.6 || pred.PurchaseProbability < 0.4 {
		t.Errorf("probability = %v, want in the mild band [0.4, 0.6)", pred.PurchaseProbability)
	}
}

func TestPredict_ColdHomeScenarioIsUnlikely(t *testing.T) {
	p := NewRulePredictor()

	s := Scenario{
		TemperatureC: 15,
		Activity:     types.ActivityNone,
		LocationType: types.LocationResidential,
		Hour:         20,
	}
	pred := p.Predict(s)
	if pred.PurchaseProbability >= 0.4 {
		t.Errorf("probability = %v, want < 0.4", pred.PurchaseProbability)
	}
	if got := p.Recommendation(s); got != "purchase unlikely to be needed" {
		t.Errorf("recommendation = %q", got)
	}
}

func TestMultiplier_TimeOfDayBands(t *testing.T) {
	p := NewRulePredictor()
	base := Scenario{TemperatureC: 20, Activity: types.ActivityLight, LocationType: types.LocationOther}

	lunch := base
	lunch.Hour = 12
	afternoon := base
	afternoon.Hour = 16
	evening := base
	evening.Hour = 20

	if math.Abs(p.Multiplier(lunch)-1.2) > 1e-9 {
		t.Errorf("lunch multiplier = %v, want 1.2", p.Multiplier(lunch))
	}
	if math.Abs(p.Multiplier(afternoon)-1.1) > 1e-9 {
		t.Errorf("afternoon multiplier = %v, want 1.1", p.Multiplier(afternoon))
	}
	if math.Abs(p.Multiplier(evening)-1.0) > 1e-9 {
		t.Errorf("evening multiplier = %v, want 1.0", p.Multiplier(evening))
	}
}

func TestAnalyze(t *testing.T) {
	p := NewRulePredictor()

	analysis := p.Analyze([]Scenario{
		{TemperatureC: 35, Activity: types.ActivityIntense, LocationType: types.LocationSportsFacility, Hour: 16},
		{TemperatureC: 25, Activity: types.ActivityLight, LocationType: types.LocationOffice, Hour: 10},
		{TemperatureC: 15, Activity: types.ActivityNone, LocationType: types.LocationResidential, Hour: 20},
	})

	if len(analysis.Predictions) != 3 {
		t.Fatalf("predictions = %d, want 3", len(analysis.Predictions))
	}
	if analysis.HighProbabilityCount != 1 {
		t.Errorf("high probability count = %d, want 1", analysis.HighProbabilityCount)
	}
	if analysis.MaxPredictedAmount != analysis.Predictions[0].PredictedAmount {
		t.Errorf("max amount = %d, want the hot gym scenario's %d",
			analysis.MaxPredictedAmount, analysis.Predictions[0].PredictedAmount)
	}
	if analysis.AvgPredictedAmount <= 0 {
		t.Errorf("avg amount = %v, want positive", analysis.AvgPredictedAmount)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	p := NewRulePredictor()
	analysis := p.Analyze(nil)
	if len(analysis.Predictions) != 0 || analysis.AvgPredictedAmount != 0 {
		t.Errorf("empty analysis should be zero-valued: %+v", analysis)
	}
}
