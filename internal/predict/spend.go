// Package predict estimates beverage spend from activity and environment
// data. It carries two complementary models: a rule-based predictor with
// fixed price tables and multipliers, and a per-person linear regression
// trained on daily activity rollups.
package predict

import (
	"fmt"

	"sipwatch/internal/types"
)

// DrinkType is a concrete purchasable beverage (as opposed to the
// temperature-band categories used by the scoring engine).
type DrinkType string

const (
	DrinkWater       DrinkType = "water"
	DrinkTea         DrinkType = "tea"
	DrinkCoffee      DrinkType = "coffee"
	DrinkSportsDrink DrinkType = "sports-drink"
	DrinkJuice       DrinkType = "juice"
	DrinkEnergyDrink DrinkType = "energy-drink"
)

// defaultBasePrice is used for drink types missing from the price table.
const defaultBasePrice = 150

// maxPurchaseProbability caps the derived purchase probability.
const maxPurchaseProbability = 0.95

// SpendPrediction is the output of the rule-based predictor for one
// scenario.
type SpendPrediction struct {
	PredictedAmount     int       `json:"predicted_amount"`
	Drink               DrinkType `json:"drink"`
	BasePrice           int       `json:"base_price"`
	Multiplier          float64   `json:"multiplier"`
	PurchaseProbability float64   `json:"purchase_probability"`
}

// Scenario is one input to the rule-based predictor.
type Scenario struct {
	TemperatureC float64             `json:"temperature_c"`
	Activity     types.ActivityLevel `json:"activity_level"`
	LocationType types.LocationType  `json:"location_type"`
	Hour         int                 `json:"hour"`
}

// ScenarioAnalysis summarizes predictions across multiple scenarios.
type ScenarioAnalysis struct {
	Predictions          []SpendPrediction `json:"predictions"`
	AvgPredictedAmount   float64           `json:"avg_predicted_amount"`
	MaxPredictedAmount   int               `json:"max_predicted_amount"`
	HighProbabilityCount int               `json:"high_probability_count"`
}

// RulePredictor is the fixed-table spend model. It is stateless and safe
// for concurrent use.
type RulePredictor struct {
	basePrices map[DrinkType]int
}

// NewRulePredictor creates a RulePredictor with the standard price table
// (JPY).
func NewRulePredictor() *RulePredictor {
	return &RulePredictor{
		basePrices: map[DrinkType]int{
			DrinkWater:       100,
			DrinkTea:         120,
			DrinkCoffee:      150,
			DrinkSportsDrink: 180,
			DrinkJuice:       130,
			DrinkEnergyDrink: 200,
		},
	}
}

// RecommendDrink picks the drink for a temperature and exertion level.
// Heavy exertion always points at a sports drink once it is warm; otherwise
// warm days get tea and everything else defaults to coffee.
func (p *RulePredictor) RecommendDrink(temperatureC float64, activity types.ActivityLevel) DrinkType {
	strenuous := activity == types.ActivityHigh || activity == types.ActivityIntense
	switch {
	case temperatureC >= 30:
		if strenuous {
			return DrinkSportsDrink
		}
		return DrinkTea
	case temperatureC >= 20:
		if strenuous {
			return DrinkSportsDrink
		}
		return DrinkCoffee
	default:
		return DrinkCoffee
	}
}

// activityMultipliers scale spend by exertion level.
var activityMultipliers = map[types.ActivityLevel]float64{
	types.ActivityNone:     0.8,
	types.ActivityLight:    1.0,
	types.ActivityModerate: 1.3,
	types.ActivityHigh:     1.6,
	types.ActivityIntense:  2.0,
}

// locationMultipliers scale spend by venue. Unlisted venues are neutral.
var locationMultipliers = map[types.LocationType]float64{
	types.LocationStation:        1.4,
	types.LocationRetail:         1.2,
	types.LocationOffice:         0.9,
	types.LocationPark:           1.3,
	types.LocationSportsFacility: 1.5,
	types.LocationResidential:    0.7,
}

// Multiplier computes the combined spend multiplier for a scenario.
func (p *RulePredictor) Multiplier(s Scenario) float64 {
	m := 1.0

	switch {
	case s.TemperatureC >= 35:
		m *= 1.8
	case s.TemperatureC >= 30:
		m *= 1.5
	case s.TemperatureC >= 25:
		m *= 1.2
	case s.TemperatureC <= 10:
		m *= 0.8
	}

	if am, ok := activityMultipliers[s.Activity]; ok {
		m *= am
	}
	if lm, ok := locationMultipliers[s.LocationType]; ok {
		m *= lm
	}

	// Lunch window and the afternoon break both lift demand.
	switch {
	case s.Hour >= 11 && s.Hour <= 13:
		m *= 1.2
	case s.Hour >= 15 && s.Hour <= 17:
		m *= 1.1
	}

	return m
}

// Predict computes the expected purchase amount and probability for one
// scenario.
func (p *RulePredictor) Predict(s Scenario) SpendPrediction {
	drink := p.RecommendDrink(s.TemperatureC, s.Activity)
	basePrice, ok := p.basePrices[drink]
	if !ok {
		basePrice = defaultBasePrice
	}

	multiplier := p.Multiplier(s)
	probability := multiplier * 0.4
	if probability > maxPurchaseProbability {
		probability = maxPurchaseProbability
	}

	return SpendPrediction{
		PredictedAmount:     int(float64(basePrice) * multiplier),
		Drink:               drink,
		BasePrice:           basePrice,
		Multiplier:          multiplier,
		PurchaseProbability: probability,
	}
}

// Recommendation renders a human-readable purchase recommendation for one
// scenario.
func (p *RulePredictor) Recommendation(s Scenario) string {
	pred := p.Predict(s)
	switch {
	case pred.PurchaseProbability >= 0.8:
		return fmt.Sprintf("strongly recommended: buy a %s", pred.Drink)
	case pred.PurchaseProbability >= 0.6:
		return fmt.Sprintf("recommended: consider buying a %s", pred.Drink)
	case pred.PurchaseProbability >= 0.4:
		return fmt.Sprintf("mild recommendation: a %s would be welcome", pred.Drink)
	default:
		return "purchase unlikely to be needed"
	}
}

// Analyze runs the predictor over several scenarios and aggregates.
func (p *RulePredictor) Analyze(scenarios []Scenario) ScenarioAnalysis {
	out := ScenarioAnalysis{}
	if len(scenarios) == 0 {
		return out
	}

	total := 0
	for _, s := range scenarios {
		pred := p.Predict(s)
		out.Predictions = append(out.Predictions, pred)

		total += pred.PredictedAmount
		if pred.PredictedAmount > out.MaxPredictedAmount {
			out.MaxPredictedAmount = pred.PredictedAmount
		}
		if pred.PurchaseProbability >= 0.7 {
			out.HighProbabilityCount++
		}
	}
	out.AvgPredictedAmount = float64(total) / float64(len(scenarios))
	return out
}
