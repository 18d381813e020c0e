package alerting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"sipwatch/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Compile-time assertion that SQSSink implements types.AlertSink.
var _ types.AlertSink = (*SQSSink)(nil)

// SQSSink publishes alert records to an SQS queue for downstream
// notification workers. The record is serialized as JSON; the level and
// location type ride along as message attributes so consumers can filter
// without unmarshalling the body.
type SQSSink struct {
	client   SQSSender
	queueURL string
	logger   types.Logger
}

// NewSQSSink creates an SQSSink publishing to the given queue URL.
func NewSQSSink(client SQSSender, queueURL string, logger types.Logger) *SQSSink {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &SQSSink{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Type returns the sink type identifier.
func (s *SQSSink) Type() types.SinkType { return types.SinkSQS }

// Deliver serializes the alert record and sends it to the queue.
func (s *SQSSink) Deliver(ctx context.Context, rec *types.AlertRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sqs sink: failed to marshal alert record: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"level": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(rec.Level)),
			},
			"location_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(rec.LocationType)),
			},
		},
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("sqs sink: failed to send alert %s to %s: %w", rec.ID, s.queueURL, err)
	}

	s.logger.Info("alert sent to queue",
		"alert_id", rec.ID,
		"queue_url", s.queueURL,
		"level", string(rec.Level),
	)
	return nil
}
