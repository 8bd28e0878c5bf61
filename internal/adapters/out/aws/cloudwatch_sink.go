package aws

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const eventsMetricName = "DomainEvents"

// CloudWatchSink counts events per type, one PutMetricData call per batch.
// Dashboards alarm on DCCValidationFailed and DCCLockoutTriggered.
type CloudWatchSink struct {
	client    CloudWatchAPI
	namespace string
	clock     func() time.Time
}

func NewCloudWatchSink(client CloudWatchAPI, namespace string, clock func() time.Time) (*CloudWatchSink, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if strings.TrimSpace(namespace) == "" {
		return nil, errs.NewValueIsRequiredError("namespace")
	}
	if clock == nil {
		clock = time.Now
	}
	return &CloudWatchSink{client: client, namespace: namespace, clock: clock}, nil
}

func (s *CloudWatchSink) Name() string {
	return "cloudwatch"
}

func (s *CloudWatchSink) Send(ctx context.Context, events []kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, e := range events {
		counts[e.EventType()]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	slices.Sort(types)

	now := s.clock()
	data := make([]cwtypes.MetricDatum, 0, len(types))
	for _, t := range types {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(eventsMetricName),
			Dimensions: []cwtypes.Dimension{{Name: aws.String("EventType"), Value: aws.String(t)}},
			Timestamp:  aws.Time(now),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(counts[t])),
		})
	}

	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(s.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
