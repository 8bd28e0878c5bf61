// Package dccsecurity guards delivery code validation against brute force.
// It follows the DCC events of every order, keeps each courier's submission
// history, locks couriers out after repeated failures and rate limits them.
package dccsecurity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"go.uber.org/zap"
)

const (
	reasonExhausted      = "Maximum validation attempts exceeded"
	reasonRepeatedFailed = "Too many failed validation attempts"
)

// Service implements the courier side of delivery code security.
//
// Example:
//
//	security, _ := dccsecurity.NewService(repo, bus, courier.DefaultPolicy(), time.Now, log)
//	bus.Subscribe(security)
//	if err := security.CheckCourier(ctx, courierID); err != nil {
//	    var locked *dccsecurity.LockoutError
//	    if errors.As(err, &locked) { ... }
//	}
type Service struct {
	repo      ports.CourierSecurityRepository
	publisher ports.EventPublisher
	policy    courier.Policy
	clock     func() time.Time
	logger    *zap.Logger
}

// NewService requires a repository. publisher may be nil, in which case
// lockout and suspicious activity events are only logged.
func NewService(
	repo ports.CourierSecurityRepository,
	publisher ports.EventPublisher,
	policy courier.Policy,
	clock func() time.Time,
	log *zap.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, errs.NewValueIsRequiredError("repo")
	}
	if policy.LockoutDuration <= 0 || policy.RateLimitWindow <= 0 || policy.MaxAttemptsPerWindow <= 0 {
		return nil, errs.NewValueIsInvalidError("policy")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
		logger:    logger.Component(log, "dcc_security"),
	}, nil
}

func (s *Service) Policy() courier.Policy {
	return s.policy
}

// CheckCourier fails with *LockoutError while the courier is locked out and
// with ErrRateLimitExceeded when the courier used the hourly budget.
func (s *Service) CheckCourier(ctx context.Context, courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	now := s.clock()

	lockout, err := s.activeLockout(ctx, courierID, now)
	if err != nil {
		return err
	}
	if lockout != nil {
		return &LockoutError{CourierID: courierID, Remaining: lockout.Remaining(now)}
	}

	recent, err := s.repo.ListAttemptsSince(ctx, courierID, now.Add(-s.policy.RateLimitWindow))
	if err != nil {
		return err
	}
	if len(recent) >= s.policy.MaxAttemptsPerWindow {
		return ErrRateLimitExceeded
	}
	return nil
}

// IsLockedOut reports whether the courier has a lockout in force.
func (s *Service) IsLockedOut(ctx context.Context, courierID kernel.UUID) (bool, error) {
	lockout, err := s.activeLockout(ctx, courierID, s.clock())
	if err != nil {
		return false, err
	}
	return lockout != nil, nil
}

// RemainingLockout is zero for couriers that are not locked out.
func (s *Service) RemainingLockout(ctx context.Context, courierID kernel.UUID) (time.Duration, error) {
	now := s.clock()
	lockout, err := s.activeLockout(ctx, courierID, now)
	if err != nil || lockout == nil {
		return 0, err
	}
	return lockout.Remaining(now), nil
}

// ClearLockout lifts a courier's lockout on behalf of an admin. It fails
// with ErrLockoutNotFound when there is nothing to clear.
func (s *Service) ClearLockout(ctx context.Context, courierID kernel.UUID, adminID, reason string) error {
	adminID = strings.TrimSpace(adminID)
	reason = strings.TrimSpace(reason)

	var errCourier, errAdmin, errReason error
	if err := courierID.Validate(); err != nil {
		errCourier = errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if adminID == "" {
		errAdmin = errs.NewValueIsRequiredError("adminId")
	}
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(errCourier, errAdmin, errReason); err != nil {
		return err
	}

	now := s.clock()
	lockout, err := s.activeLockout(ctx, courierID, now)
	if err != nil {
		return err
	}
	if lockout == nil {
		return ErrLockoutNotFound
	}
	if err = s.repo.DeleteLockout(ctx, courierID); err != nil {
		return err
	}

	s.logger.Info("courier lockout cleared",
		zap.Stringer("courier_id", courierID),
		zap.String("admin_id", adminID),
		zap.String("reason", reason))
	return s.publish(ctx, courier.NewLockoutClearedEvent(courierID, adminID, reason, now))
}

// ValidationStats aggregates the courier's submissions made after since.
func (s *Service) ValidationStats(ctx context.Context, courierID kernel.UUID, since time.Time) (courier.ValidationStats, error) {
	if err := courierID.Validate(); err != nil {
		return courier.ValidationStats{}, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	now := s.clock()

	attempts, err := s.repo.ListAttemptsSince(ctx, courierID, since)
	if err != nil {
		return courier.ValidationStats{}, err
	}
	lockout, err := s.activeLockout(ctx, courierID, now)
	if err != nil {
		return courier.ValidationStats{}, err
	}
	return courier.ComputeStats(attempts, lockout, now), nil
}

// HandleEvent records the outcome of every code submission. It is
// subscribed to the event bus and ignores events it does not follow.
func (s *Service) HandleEvent(ctx context.Context, event kernel.DomainEvent) error {
	switch e := event.(type) {
	case dcc.ValidatedEvent:
		return s.recordAttempt(ctx, e.CourierID, e.OrderID, "", true, e.OccurredAt())
	case dcc.ValidationFailedEvent:
		if err := s.recordAttempt(ctx, e.CourierID, e.OrderID, e.SubmittedCode, false, e.OccurredAt()); err != nil {
			return err
		}
		return s.afterFailure(ctx, e)
	default:
		return nil
	}
}

func (s *Service) recordAttempt(
	ctx context.Context,
	courierID, orderID kernel.UUID,
	code string,
	successful bool,
	at time.Time,
) error {
	attempt, err := courier.NewValidationAttempt(courierID, orderID, code, successful, at)
	if err != nil {
		return err
	}
	if err = s.repo.AddAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("record validation attempt: %w", err)
	}
	return nil
}

func (s *Service) afterFailure(ctx context.Context, e dcc.ValidationFailedEvent) error {
	now := e.OccurredAt()

	history, err := s.repo.ListAttemptsSince(ctx, e.CourierID, now.Add(-s.policy.RateLimitWindow))
	if err != nil {
		return err
	}

	if pattern, found := courier.DetectSuspicion(history, e.SubmittedCode, now, s.policy); found {
		s.logger.Warn("suspicious delivery code activity",
			zap.Stringer("courier_id", e.CourierID),
			zap.Stringer("order_id", e.OrderID),
			zap.String("pattern", string(pattern)))
		if err = s.publish(ctx, courier.NewSuspiciousActivityEvent(e.CourierID, e.OrderID, pattern, now)); err != nil {
			return err
		}
	}

	var reason string
	switch {
	case e.RemainingAttempts == 0:
		reason = reasonExhausted
	case courier.CountFailures(history) >= s.policy.MaxFailuresBeforeLockout:
		reason = reasonRepeatedFailed
	default:
		return nil
	}
	return s.lockOut(ctx, e.CourierID, e.OrderID, e.AttemptNumber, reason, now)
}

func (s *Service) lockOut(
	ctx context.Context,
	courierID, orderID kernel.UUID,
	attemptCount int,
	reason string,
	now time.Time,
) error {
	lockout, err := courier.NewLockout(courierID, orderID, attemptCount, reason, now, s.policy.LockoutDuration)
	if err != nil {
		return err
	}
	if err = s.repo.SaveLockout(ctx, lockout); err != nil {
		return fmt.Errorf("save lockout: %w", err)
	}

	s.logger.Warn("courier locked out",
		zap.Stringer("courier_id", courierID),
		zap.Stringer("order_id", orderID),
		zap.Int("attempt_count", attemptCount),
		zap.Time("expires_at", lockout.ExpiresAt()),
		zap.String("reason", reason))
	return s.publish(ctx, courier.NewLockoutTriggeredEvent(lockout))
}

// activeLockout returns nil when the courier has no lockout in force.
// Stale lockouts are removed on the way.
func (s *Service) activeLockout(ctx context.Context, courierID kernel.UUID, now time.Time) (*courier.Lockout, error) {
	lockout, err := s.repo.GetLockout(ctx, courierID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !lockout.IsActive(now) {
		if err = s.repo.DeleteLockout(ctx, courierID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return lockout, nil
}

func (s *Service) publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(ctx, events...)
}
