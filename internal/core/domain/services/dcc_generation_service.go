package services

import (
	"fmt"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// codeSpace is the number of distinct dcc.CodeLength digit codes.
const codeSpace = 10000

// DCCPolicy is the expiry and attempt budget applied by GenerateDefaultCode.
type DCCPolicy struct {
	Expiration  time.Duration
	MaxAttempts int
}

// DefaultDCCPolicy returns 24 hours and 3 attempts.
func DefaultDCCPolicy() DCCPolicy {
	return DCCPolicy{Expiration: dcc.DefaultExpiration, MaxAttempts: dcc.DefaultMaxAttempts}
}

// Validate checks the policy against the allowed ranges.
func (p DCCPolicy) Validate() error {
	if p.Expiration <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("expiration", fmt.Errorf("%s is not positive", p.Expiration))
	}
	if p.Expiration < dcc.MinExpiration || p.Expiration > dcc.MaxExpiration {
		return errs.NewValueIsOutOfRangeError("expiration", p.Expiration, dcc.MinExpiration, dcc.MaxExpiration)
	}
	if p.MaxAttempts < dcc.MinMaxAttempts || p.MaxAttempts > dcc.MaxMaxAttempts {
		return errs.NewValueIsOutOfRangeError("maxAttempts", p.MaxAttempts, dcc.MinMaxAttempts, dcc.MaxMaxAttempts)
	}
	return nil
}

// DCCGenerationService issues delivery confirmation codes. Codes are drawn
// uniformly from the whole four digit space so they cannot be guessed from
// order data or from each other.
type DCCGenerationService struct {
	random   RandomSource
	clock    func() time.Time
	defaults DCCPolicy
}

// NewDCCGenerationService validates defaults. A nil random source means
// CryptoRandom and a nil clock means time.Now.
func NewDCCGenerationService(random RandomSource, clock func() time.Time, defaults DCCPolicy) (*DCCGenerationService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	if random == nil {
		random = CryptoRandom{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &DCCGenerationService{random: random, clock: clock, defaults: defaults}, nil
}

// Defaults returns the policy used by GenerateDefaultCode.
func (s *DCCGenerationService) Defaults() DCCPolicy {
	return s.defaults
}

// GenerateDefaultCode issues a code with the default policy.
func (s *DCCGenerationService) GenerateDefaultCode(orderID kernel.UUID) (*dcc.DeliveryCode, []kernel.DomainEvent, error) {
	return s.GenerateCode(orderID, s.defaults.Expiration, s.defaults.MaxAttempts)
}

// GenerateCode issues a code valid for expiration with maxAttempts
// submissions. expiration must be within [1 minute, 7 days] and
// maxAttempts within [1, 10].
func (s *DCCGenerationService) GenerateCode(
	orderID kernel.UUID,
	expiration time.Duration,
	maxAttempts int,
) (*dcc.DeliveryCode, []kernel.DomainEvent, error) {
	policy := DCCPolicy{Expiration: expiration, MaxAttempts: maxAttempts}
	if err := policy.Validate(); err != nil {
		return nil, nil, err
	}

	n, err := s.random.IntN(codeSpace)
	if err != nil {
		return nil, nil, fmt.Errorf("draw delivery code: %w", err)
	}
	if n < 0 || n >= codeSpace {
		return nil, nil, errs.NewValueIsOutOfRangeError("random code", n, 0, codeSpace-1)
	}

	now := s.clock()
	code, generated, err := dcc.NewDeliveryCode(orderID, fmt.Sprintf("%04d", n), maxAttempts, now, now.Add(expiration))
	if err != nil {
		return nil, nil, err
	}
	return code, []kernel.DomainEvent{generated}, nil
}

// RegenerateCode issues a fresh code for the same order, superseding
// previous. An active previous code expires first, so the returned events
// are Expired (when applicable) followed by Generated.
func (s *DCCGenerationService) RegenerateCode(
	orderID kernel.UUID,
	previous *dcc.DeliveryCode,
	expiration time.Duration,
	maxAttempts int,
) (*dcc.DeliveryCode, []kernel.DomainEvent, error) {
	if previous != nil && !previous.OrderID().IsEqual(orderID) {
		return nil, nil, errs.NewValueIsInvalidErrorWithCause("previous",
			fmt.Errorf("code belongs to order %s, not %s", previous.OrderID(), orderID))
	}

	code, generated, err := s.GenerateCode(orderID, expiration, maxAttempts)
	if err != nil {
		return nil, nil, err
	}

	var events []kernel.DomainEvent
	if previous != nil {
		events = append(events, previous.Expire(s.clock())...)
	}
	return code, append(events, generated...), nil
}
