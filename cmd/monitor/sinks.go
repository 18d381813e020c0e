package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"sipwatch/internal/alerting"
	"sipwatch/internal/config"
	"sipwatch/internal/external"
	"sipwatch/internal/security"
	"sipwatch/internal/types"
)

// buildSink assembles the configured sink chain. The log sink is always
// present; SQS and webhook sinks join the fanout when configured.
func buildSink(ctx context.Context, cfg *config.Config, clock types.Clock, logger types.Logger) (types.AlertSink, error) {
	sinks := []types.AlertSink{alerting.NewLogSink(logger)}

	if cfg.AWS.AlertQueue != "" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		sinks = append(sinks, alerting.NewSQSSink(sqsClient, cfg.AWS.AlertQueue, logger))
	}

	if cfg.Alerting.WebhookURL != "" {
		if err := security.ValidateWebhookURL(cfg.Alerting.WebhookURL); err != nil {
			return nil, fmt.Errorf("webhook URL rejected: %w", err)
		}
		httpClient, err := security.NewSafeHTTPClient(cfg.Alerting.WebhookWait, 3)
		if err != nil {
			return nil, err
		}
		webhookClient := external.NewBaseClient(
			httpClient,
			"alert-webhook",
			external.DefaultRetryPolicy(),
			"sipwatch-monitor/1.0",
		)
		sinks = append(sinks, alerting.NewWebhookSink(
			webhookClient,
			cfg.Alerting.WebhookURL,
			cfg.Alerting.WebhookSecret.Unmask(),
			clock,
			logger,
		))
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return alerting.NewFanoutSink(sinks...), nil
}

// buildMetrics returns a CloudWatch publisher when enabled, NopMetrics
// otherwise.
func buildMetrics(ctx context.Context, cfg *config.Config, logger types.Logger) (alerting.AlertMetrics, error) {
	if !cfg.AWS.MetricsEnabled {
		return alerting.NopMetrics{}, nil
	}
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return alerting.NewCloudWatchMetrics(cwClient, logger), nil
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS SDK config: %w", err)
	}
	return awsCfg, nil
}
