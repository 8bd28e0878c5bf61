package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built by
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrItemsAreRequired is returned when an order is placed without lines.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// Order is the aggregate root of the order lifecycle. It owns the line
// items, the delivery address, the payment and the current Status.
//
// Order follows these invariants:
//   - status is always a valid Status and starts at Pending
//   - items are non-empty and immutable after creation
//   - every status change stamps updatedAt and statusChangedAt and clears
//     timeoutReportedAt
//   - version increases by one on every persisted change
//
// The status mutators (ChangeStatus, Cancel, RequestRefund) do not consult
// workflow rules. They are called by services.OrderStateMachine, which is
// the only component that decides whether a change is allowed.
type Order struct {
	id         kernel.UUID
	merchantID kernel.UUID
	customerID kernel.UUID

	items   []Item
	address DeliveryAddress
	payment PaymentInfo

	status              Status
	cancellationReason  CancellationReason
	cancellationDetails string
	refundReason        string

	createdAt       time.Time
	updatedAt       time.Time
	statusChangedAt time.Time

	// timeoutReportedAt is set once a timeout of the current status was
	// reported without changing the status.
	timeoutReportedAt time.Time

	// version is the optimistic lock read from storage.
	version int64

	guard guard.ConstructorGuard
}

// NewOrder places an order in Pending status.
//
// Parameters:
//   - id, merchantID, customerID: valid identifiers
//   - items: at least one line, all in the payment currency
//   - address: a constructed DeliveryAddress
//   - payment: a constructed PaymentInfo
//   - now: creation instant
//
// Returns the order together with its CreatedEvent.
//
// Example:
//
//	o, created, err := order.NewOrder(id, merchantID, customerID, items, address, payment, time.Now())
//	if err != nil {
//	    return err
//	}
func NewOrder(
	id, merchantID, customerID kernel.UUID,
	items []Item,
	address DeliveryAddress,
	payment PaymentInfo,
	now time.Time,
) (*Order, CreatedEvent, error) {
	o := &Order{
		status:          Pending,
		createdAt:       now.UTC(),
		updatedAt:       now.UTC(),
		statusChangedAt: now.UTC(),
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIdentity(id, merchantID, customerID),
		o.setItems(items),
		o.setAddress(address),
		o.setPayment(payment),
	); err != nil {
		return nil, CreatedEvent{}, err
	}

	total, err := o.Total()
	if err != nil {
		return nil, CreatedEvent{}, err
	}
	if total.Currency() != payment.Amount().Currency() {
		return nil, CreatedEvent{}, errs.NewValueIsInvalidErrorWithCause("payment",
			fmt.Errorf("payment currency %s does not match items currency %s",
				payment.Amount().Currency(), total.Currency()))
	}

	return o, CreatedEvent{
		BaseEvent:  kernel.NewBaseEvent(EventTypeCreated, o.id, now),
		OrderID:    o.id,
		MerchantID: o.merchantID,
		CustomerID: o.customerID,
		Total:      total.Amount(),
		Currency:   total.Currency(),
	}, nil
}

// RestoreParams carries the persisted state of an order.
type RestoreParams struct {
	ID                  kernel.UUID
	MerchantID          kernel.UUID
	CustomerID          kernel.UUID
	Items               []Item
	Address             DeliveryAddress
	Payment             PaymentInfo
	Status              Status
	CancellationReason  CancellationReason
	CancellationDetails string
	RefundReason        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	StatusChangedAt     time.Time
	TimeoutReportedAt   time.Time
	Version             int64
}

// RestoreOrder rebuilds an order from storage without emitting events. The
// same field validation as NewOrder applies.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o := &Order{
		cancellationReason:  p.CancellationReason,
		cancellationDetails: p.CancellationDetails,
		refundReason:        p.RefundReason,
		createdAt:           p.CreatedAt.UTC(),
		updatedAt:           p.UpdatedAt.UTC(),
		statusChangedAt:     p.StatusChangedAt.UTC(),
		timeoutReportedAt:   utcOrZero(p.TimeoutReportedAt),
		version:             p.Version,
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIdentity(p.ID, p.MerchantID, p.CustomerID),
		o.setItems(p.Items),
		o.setAddress(p.Address),
		o.setPayment(p.Payment),
		o.setStatus(p.Status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the order was built through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) MerchantID() kernel.UUID {
	return o.merchantID
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) Address() DeliveryAddress {
	return o.address
}

func (o *Order) Payment() PaymentInfo {
	return o.payment
}

func (o *Order) Status() Status {
	return o.status
}

// CancellationReason is UnknownCancellationReason unless the order was cancelled.
func (o *Order) CancellationReason() CancellationReason {
	return o.cancellationReason
}

func (o *Order) CancellationDetails() string {
	return o.cancellationDetails
}

func (o *Order) RefundReason() string {
	return o.refundReason
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// StatusChangedAt is when the order entered its current status. Timeout
// policies are measured from it.
func (o *Order) StatusChangedAt() time.Time {
	return o.statusChangedAt
}

// TimeoutReportedAt is zero unless the timeout of the current status has
// already been reported.
func (o *Order) TimeoutReportedAt() time.Time {
	return o.timeoutReportedAt
}

// IsTimeoutReported reports whether the current status already produced a
// timeout report.
func (o *Order) IsTimeoutReported() bool {
	return !o.timeoutReportedAt.IsZero()
}

// MarkTimeoutReported records that the timeout of the current status was
// reported. The mark lasts until the next status change.
func (o *Order) MarkTimeoutReported(at time.Time) {
	o.timeoutReportedAt = at.UTC()
	o.updatedAt = at.UTC()
}

func (o *Order) Version() int64 {
	return o.version
}

// SyncVersion records the version written by a repository.
func (o *Order) SyncVersion(version int64) {
	o.version = version
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.items {
		count += item.Quantity()
	}
	return count
}

// Total sums the line totals.
func (o *Order) Total() (kernel.Money, error) {
	total, err := kernel.ZeroMoney(o.items[0].Total().Currency())
	if err != nil {
		return kernel.Money{}, err
	}
	for _, item := range o.items {
		if total, err = total.Add(item.Total()); err != nil {
			return kernel.Money{}, err
		}
	}
	return total, nil
}

// TimeInStatus returns how long the order has been in its current status.
func (o *Order) TimeInStatus(now time.Time) time.Duration {
	return now.Sub(o.statusChangedAt)
}

// ChangeStatus moves the order to target and returns the StatusChangedEvent.
// It refuses only structurally impossible changes (invalid target, same
// status, leaving Refunded); workflow policy is checked by the caller.
func (o *Order) ChangeStatus(target Status, at time.Time) (StatusChangedEvent, error) {
	if err := target.Validate(); err != nil {
		return StatusChangedEvent{}, err
	}
	if o.status.IsFinal() {
		return StatusChangedEvent{}, NewInvalidStatusTransitionError("change status of", o.id, o.status, target,
			"status is final")
	}
	if target == o.status {
		return StatusChangedEvent{}, NewInvalidStatusTransitionError("change status of", o.id, o.status, target,
			"order is already in this status")
	}

	from := o.status
	o.status = target
	o.updatedAt = at.UTC()
	o.statusChangedAt = at.UTC()
	o.timeoutReportedAt = time.Time{}

	return StatusChangedEvent{
		BaseEvent:  kernel.NewBaseEvent(EventTypeStatusChanged, o.id, at),
		OrderID:    o.id,
		MerchantID: o.merchantID,
		From:       from,
		To:         target,
	}, nil
}

// Cancel moves the order to Cancelled and records why. It returns the
// StatusChangedEvent followed by the CancelledEvent.
func (o *Order) Cancel(reason CancellationReason, details string, at time.Time) ([]kernel.DomainEvent, error) {
	if err := reason.Validate(); err != nil {
		return nil, err
	}

	from := o.status
	changed, err := o.ChangeStatus(Cancelled, at)
	if err != nil {
		return nil, err
	}
	o.cancellationReason = reason
	o.cancellationDetails = strings.TrimSpace(details)

	return []kernel.DomainEvent{
		changed,
		CancelledEvent{
			BaseEvent:      kernel.NewBaseEvent(EventTypeCancelled, o.id, at),
			OrderID:        o.id,
			MerchantID:     o.merchantID,
			PreviousStatus: from,
			Reason:         reason,
			Details:        o.cancellationDetails,
		},
	}, nil
}

// RequestRefund moves the order to Refunded. It returns the
// StatusChangedEvent followed by the RefundRequestedEvent carrying the
// amount to return.
func (o *Order) RequestRefund(reason string, at time.Time) ([]kernel.DomainEvent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errs.NewValueIsRequiredError("refund reason")
	}

	from := o.status
	changed, err := o.ChangeStatus(Refunded, at)
	if err != nil {
		return nil, err
	}
	o.refundReason = reason

	return []kernel.DomainEvent{
		changed,
		RefundRequestedEvent{
			BaseEvent:      kernel.NewBaseEvent(EventTypeRefundRequested, o.id, at),
			OrderID:        o.id,
			MerchantID:     o.merchantID,
			PreviousStatus: from,
			Reason:         reason,
			Method:         o.payment.Method(),
			Amount:         o.payment.Amount().Amount(),
			Currency:       o.payment.Amount().Currency(),
		},
	}, nil
}

func (o *Order) setIdentity(id, merchantID, customerID kernel.UUID) error {
	var errID, errMerchant, errCustomer error
	if err := id.Validate(); err != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	if err := merchantID.Validate(); err != nil {
		errMerchant = errs.NewValueIsRequiredErrorWithCause("merchantId", err)
	}
	if err := customerID.Validate(); err != nil {
		errCustomer = errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	if err := errors.Join(errID, errMerchant, errCustomer); err != nil {
		return err
	}
	o.id = id
	o.merchantID = merchantID
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	currency := items[0].Total().Currency()
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if item.Total().Currency() != currency {
			return errs.NewValueIsInvalidErrorWithCause("items",
				fmt.Errorf("item %d is priced in %s, expected %s", i, item.Total().Currency(), currency))
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setAddress(address DeliveryAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setPayment(payment PaymentInfo) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	o.payment = payment
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
