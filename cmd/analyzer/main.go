// Package main is the entrypoint for the activity analyzer Lambda.
//
// The analyzer runs on a schedule. For every person in the activity table
// it rolls hourly rows up to daily aggregates, fits the spend regression,
// and logs a per-person report with a reference prediction and a weekly
// step forecast. Cold start wires the database pool; the handler holds no
// mutable state.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"

	"sipwatch/internal/db"
	"sipwatch/internal/predict"
	"sipwatch/internal/types"
)

// Reference scenario matching the historical report: 30 degrees, 8000 steps.
const (
	referenceTempC = 30.0
	referenceSteps = 8000
)

// AnalyzerInput is the Lambda event payload. All fields are optional.
type AnalyzerInput struct {
	// Authors restricts the run to the named people; empty means everyone.
	Authors []string `json:"authors"`
}

// AuthorReport is the analysis result for one person.
type AuthorReport struct {
	Author         string  `json:"author"`
	Days           int     `json:"days"`
	TempCoef       float64 `json:"temp_coef"`
	StepsCoef      float64 `json:"steps_coef"`
	Intercept      float64 `json:"intercept"`
	R2             float64 `json:"r2"`
	PredictedSpend int     `json:"predicted_spend"`
	StepForecast   []int   `json:"step_forecast"`
}

// activityReader is the subset of db.ActivityRepository the analyzer needs.
type activityReader interface {
	Authors(ctx context.Context) ([]string, error)
	DailyAggregates(ctx context.Context, author string) ([]types.DailyActivity, error)
}

type handler struct {
	repo   activityReader
	clock  types.Clock
	logger *slog.Logger
}

// Handle analyzes each requested author. Authors whose data cannot support
// a regression are skipped with a warning rather than failing the batch.
func (h *handler) Handle(ctx context.Context, input AnalyzerInput) ([]AuthorReport, error) {
	authors := input.Authors
	if len(authors) == 0 {
		var err error
		authors, err = h.repo.Authors(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing authors: %w", err)
		}
	}
	h.logger.InfoContext(ctx, "analyzer run started", "authors", len(authors))

	var reports []AuthorReport
	for _, author := range authors {
		report, err := h.analyzeAuthor(ctx, author)
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) && appErr.Code == types.ErrCodeValidationInvalidModel {
				h.logger.WarnContext(ctx, "skipping author: insufficient data",
					"author", author, "error", err)
				continue
			}
			return nil, fmt.Errorf("analyzing %s: %w", author, err)
		}
		reports = append(reports, *report)
	}

	h.logger.InfoContext(ctx, "analyzer run complete", "reports", len(reports))
	return reports, nil
}

func (h *handler) analyzeAuthor(ctx context.Context, author string) (*AuthorReport, error) {
	days, err := h.repo.DailyAggregates(ctx, author)
	if err != nil {
		return nil, err
	}

	model, err := predict.FitSpendModel(days)
	if err != nil {
		return nil, err
	}

	steps := predict.NewWeekdayStepModel()
	for _, d := range days {
		steps.AddSample(d.Date, d.Steps)
	}
	forecast := steps.WeeklyForecast(h.clock.Now(), 0)
	forecastSteps := make([]int, len(forecast))
	for i, f := range forecast {
		forecastSteps[i] = f.PredictedSteps
	}

	report := &AuthorReport{
		Author:         author,
		Days:           len(days),
		TempCoef:       model.TempCoef,
		StepsCoef:      model.StepsCoef,
		Intercept:      model.Intercept,
		R2:             model.R2,
		PredictedSpend: model.Predict(referenceTempC, referenceSteps),
		StepForecast:   forecastSteps,
	}

	h.logger.InfoContext(ctx, "author analyzed",
		"author", author,
		"days", report.Days,
		"temp_coef", report.TempCoef,
		"steps_coef", report.StepsCoef,
		"intercept", report.Intercept,
		"r2", report.R2,
		"predicted_spend", report.PredictedSpend,
	)
	return report, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("analyzer Lambda initializing (cold start)")

	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	h := &handler{
		repo:   db.NewActivityRepository(pool),
		clock:  types.RealClock{},
		logger: logger,
	}

	logger.Info("analyzer Lambda initialized")
	lambda.Start(h.Handle)
}
