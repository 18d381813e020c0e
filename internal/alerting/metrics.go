package alerting

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"sipwatch/internal/types"
)

// AlertMetrics abstracts telemetry for the dispatcher. Implementations
// must be non-blocking from the caller's point of view: a metrics failure
// never fails a dispatch.
type AlertMetrics interface {
	RecordDispatch(ctx context.Context, level types.AlertLevel)
	RecordSuppressed(ctx context.Context, reason string)
	RecordSinkFailure(ctx context.Context, sink types.SinkType)
}

// NopMetrics discards all metrics. Used as the default and in tests.
type NopMetrics struct{}

func (NopMetrics) RecordDispatch(ctx context.Context, level types.AlertLevel) {}
func (NopMetrics) RecordSuppressed(ctx context.Context, reason string)        {}
func (NopMetrics) RecordSinkFailure(ctx context.Context, sink types.SinkType) {}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Compile-time assertion that CloudWatchMetrics implements AlertMetrics.
var _ AlertMetrics = (*CloudWatchMetrics)(nil)

// CloudWatchMetrics emits dispatcher telemetry to AWS CloudWatch.
// Publish failures are logged and swallowed.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchMetrics creates a CloudWatchMetrics publishing to the
// standard namespace.
func NewCloudWatchMetrics(client CloudWatchClient, logger types.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

// RecordDispatch emits an AlertDispatched count with the Level dimension.
func (m *CloudWatchMetrics) RecordDispatch(ctx context.Context, level types.AlertLevel) {
	m.put(ctx, types.MetricAlertDispatched, cwtypes.Dimension{
		Name:  aws.String(types.DimLevel),
		Value: aws.String(string(level)),
	})
}

// RecordSuppressed emits an AlertSuppressed count with the Reason dimension.
func (m *CloudWatchMetrics) RecordSuppressed(ctx context.Context, reason string) {
	m.put(ctx, types.MetricAlertSuppressed, cwtypes.Dimension{
		Name:  aws.String(types.DimReason),
		Value: aws.String(reason),
	})
}

// RecordSinkFailure emits a SinkFailure count with the Sink dimension.
func (m *CloudWatchMetrics) RecordSinkFailure(ctx context.Context, sink types.SinkType) {
	m.put(ctx, types.MetricSinkFailure, cwtypes.Dimension{
		Name:  aws.String(types.DimSink),
		Value: aws.String(string(sink)),
	})
}

func (m *CloudWatchMetrics) put(ctx context.Context, name string, dims ...cwtypes.Dimension) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to publish metric",
			"metric", name,
			"error", err.Error(),
		)
	}
}
