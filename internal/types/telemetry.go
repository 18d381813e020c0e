package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricAlertDispatched = "AlertDispatched"
	MetricAlertSuppressed = "AlertSuppressed"
	MetricSinkFailure     = "SinkFailure"
	MetricEvaluation      = "ObservationEvaluated"

	// Dimension Keys
	DimSink     = "Sink"
	DimLevel    = "Level"
	DimLocation = "LocationType"
	DimReason   = "Reason"

	// Metric Namespace
	MetricNamespace = "SipWatch"
)

// Suppression reason values for the AlertSuppressed metric.
const (
	SuppressReasonBelowThreshold = "below_threshold"
	SuppressReasonCooldown       = "cooldown"
)
