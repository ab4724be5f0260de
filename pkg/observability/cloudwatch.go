package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// PutMetricDataAPI is the subset of the CloudWatch client the reporter uses
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// StartupReporter sends startup timings to CloudWatch
type StartupReporter struct {
	namespace string
	client    PutMetricDataAPI
}

// NewStartupReporter creates a reporter. A nil client disables it.
func NewStartupReporter(namespace string, client PutMetricDataAPI) *StartupReporter {
	return &StartupReporter{namespace: namespace, client: client}
}

// RecordColdStart records how long the composition root took to build
func (r *StartupReporter) RecordColdStart(ctx context.Context, variant string, duration time.Duration) error {
	if r.client == nil {
		return nil
	}

	now := time.Now()
	dims := []types.Dimension{
		{Name: aws.String("BuildVariant"), Value: aws.String(variant)},
	}
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("ColdStartDuration"),
				Dimensions: dims,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("ColdStartCount"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put cold start metrics: %w", err)
	}
	return nil
}
