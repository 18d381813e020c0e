package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"sipwatch/internal/config"
)

// awsCfgResult bundles the loaded SDK config with the optional endpoint
// override used for LocalStack runs.
type awsCfgResult struct {
	cfg      aws.Config
	endpoint string
}

func newSQSClient(ctx context.Context, cfg *config.Config) (*sqs.Client, error) {
	r, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(r.cfg, func(o *sqs.Options) {
		if r.endpoint != "" {
			o.BaseEndpoint = aws.String(r.endpoint)
		}
	}), nil
}

func newCloudWatchClient(ctx context.Context, cfg *config.Config) (*cloudwatch.Client, error) {
	r, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cloudwatch.NewFromConfig(r.cfg, func(o *cloudwatch.Options) {
		if r.endpoint != "" {
			o.BaseEndpoint = aws.String(r.endpoint)
		}
	}), nil
}
