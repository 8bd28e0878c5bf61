package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// Envelope is the SQS message body of one domain event.
type Envelope struct {
	EventID     kernel.UUID        `json:"eventId"`
	EventType   string             `json:"eventType"`
	AggregateID kernel.UUID        `json:"aggregateId"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Payload     kernel.DomainEvent `json:"payload"`
}

// SQSSink sends one message per event. On FIFO queues the aggregate id is
// the message group, so consumers see each order's events in order, and the
// event id deduplicates retries.
type SQSSink struct {
	client   SQSAPI
	queueURL string
	fifo     bool
}

func NewSQSSink(client SQSAPI, queueURL string) (*SQSSink, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if strings.TrimSpace(queueURL) == "" {
		return nil, errs.NewValueIsRequiredError("queueURL")
	}
	return &SQSSink{client: client, queueURL: queueURL, fifo: strings.HasSuffix(queueURL, ".fifo")}, nil
}

func (s *SQSSink) Name() string {
	return "sqs"
}

// Send stops at the first failure so a later event of the same order is
// never delivered ahead of an earlier one.
func (s *SQSSink) Send(ctx context.Context, events []kernel.DomainEvent) error {
	for _, e := range events {
		body, err := json.Marshal(Envelope{
			EventID:     e.EventID(),
			EventType:   e.EventType(),
			AggregateID: e.AggregateID(),
			OccurredAt:  e.OccurredAt(),
			Payload:     e,
		})
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.EventType(), err)
		}

		input := &sqs.SendMessageInput{
			QueueUrl:    aws.String(s.queueURL),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]sqstypes.MessageAttributeValue{
				"eventType": {DataType: aws.String("String"), StringValue: aws.String(e.EventType())},
			},
		}
		if s.fifo {
			input.MessageGroupId = aws.String(e.AggregateID().String())
			input.MessageDeduplicationId = aws.String(e.EventID().String())
		}

		if _, err = s.client.SendMessage(ctx, input); err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				return fmt.Errorf("send %s: %s: %w", e.EventType(), apiErr.ErrorCode(), err)
			}
			return fmt.Errorf("send %s: %w", e.EventType(), err)
		}
	}
	return nil
}
