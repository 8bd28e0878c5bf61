package commands_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

// store is an in-memory backend shared by every unit of work of a test.
type store struct {
	orders    map[kernel.UUID]*order.Order
	codes     map[kernel.UUID]*dcc.DeliveryCode
	published []kernel.DomainEvent
	commits   int
	updates   int

	// publishErr makes every commit succeed but fail to publish.
	publishErr error
}

func newStore() *store {
	return &store{
		orders: make(map[kernel.UUID]*order.Order),
		codes:  make(map[kernel.UUID]*dcc.DeliveryCode),
	}
}

func (s *store) eventTypes() []string {
	out := make([]string, 0, len(s.published))
	for _, e := range s.published {
		out = append(out, e.EventType())
	}
	return out
}

func (s *store) orderFactory() commands.OrderUoWFactory {
	return orderUoWFactory{s}
}

func (s *store) factory() commands.UoWFactory {
	return uowFactory{s}
}

func (s *store) codeFactory() commands.DeliveryCodeUoWFactory {
	return codeUoWFactory{s}
}

type uowFactory struct{ s *store }

func (f uowFactory) Create() commands.UoW { return &fakeUoW{s: f.s} }

type orderUoWFactory struct{ s *store }

func (f orderUoWFactory) Create() commands.OrderUoW { return &fakeUoW{s: f.s} }

type codeUoWFactory struct{ s *store }

func (f codeUoWFactory) Create() commands.DeliveryCodeUoW { return &fakeUoW{s: f.s} }

type fakeUoW struct {
	s       *store
	began   bool
	pending []kernel.DomainEvent
}

func (u *fakeUoW) Begin(context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUoW) Commit(context.Context) error {
	if !u.began {
		return errors.New("commit without begin")
	}
	u.began = false
	u.s.commits++
	events := u.pending
	u.pending = nil
	if u.s.publishErr != nil {
		return fmt.Errorf("%w: %w", ports.ErrPublishAfterCommit, u.s.publishErr)
	}
	u.s.published = append(u.s.published, events...)
	return nil
}

func (u *fakeUoW) Rollback(context.Context) error {
	if !u.began {
		return errors.New("no active transaction")
	}
	u.began = false
	u.pending = nil
	return nil
}

func (u *fakeUoW) RecordEvents(events ...kernel.DomainEvent) {
	u.pending = append(u.pending, events...)
}

func (u *fakeUoW) OrderRepository() ports.OrderRepository {
	return memoryOrders{u.s}
}

func (u *fakeUoW) DeliveryCodeRepository() ports.DeliveryCodeRepository {
	return memoryCodes{u.s}
}

type memoryOrders struct{ s *store }

func (r memoryOrders) Add(_ context.Context, o *order.Order) error {
	if _, ok := r.s.orders[o.ID()]; ok {
		return errors.New("duplicate order")
	}
	o.SyncVersion(1)
	r.s.orders[o.ID()] = o
	return nil
}

func (r memoryOrders) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.s.orders[o.ID()]; !ok {
		return errs.NewObjectNotFoundError("order", o.ID())
	}
	o.SyncVersion(o.Version() + 1)
	r.s.updates++
	return nil
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return o, nil
}

// ListTimeoutCandidates orders like the database: oldest status change
// first, then by id.
func (r memoryOrders) ListTimeoutCandidates(_ context.Context, scan ports.TimeoutScan) ([]*order.Order, error) {
	var matching []*order.Order
	for _, o := range r.s.orders {
		cutoff, ok := scan.Cutoffs[o.Status()]
		if ok && o.StatusChangedAt().Before(cutoff) && !o.IsTimeoutReported() {
			matching = append(matching, o)
		}
	}

	slices.SortFunc(matching, func(a, b *order.Order) int {
		if c := a.StatusChangedAt().Compare(b.StatusChangedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})

	out := make([]*order.Order, 0, scan.Limit)
	for _, o := range matching {
		if scan.After != nil && !after(o, scan.After) {
			continue
		}
		if len(out) == scan.Limit {
			break
		}
		out = append(out, o)
	}
	return out, nil
}

func after(o *order.Order, cursor *ports.TimeoutScanCursor) bool {
	if c := o.StatusChangedAt().Compare(cursor.StatusChangedAt); c != 0 {
		return c > 0
	}
	return o.ID().String() > cursor.ID.String()
}

type memoryCodes struct{ s *store }

func (r memoryCodes) Add(_ context.Context, c *dcc.DeliveryCode) error {
	if _, ok := r.s.codes[c.OrderID()]; ok {
		return errors.New("duplicate code")
	}
	c.SyncVersion(1)
	r.s.codes[c.OrderID()] = c
	return nil
}

func (r memoryCodes) Update(_ context.Context, c *dcc.DeliveryCode) error {
	if _, ok := r.s.codes[c.OrderID()]; !ok {
		return errs.NewObjectNotFoundError("delivery code", c.OrderID())
	}
	c.SyncVersion(c.Version() + 1)
	r.s.updates++
	return nil
}

func (r memoryCodes) Replace(_ context.Context, previous, next *dcc.DeliveryCode) error {
	stored, ok := r.s.codes[previous.OrderID()]
	if !ok || stored != previous {
		return ports.ErrConcurrentModification
	}
	next.SyncVersion(previous.Version() + 1)
	r.s.codes[next.OrderID()] = next
	return nil
}

func (r memoryCodes) GetByOrder(_ context.Context, orderID kernel.UUID) (*dcc.DeliveryCode, error) {
	c, ok := r.s.codes[orderID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery code", orderID)
	}
	return c, nil
}

func (r memoryCodes) ListActiveExpiredBefore(_ context.Context, now time.Time, limit int) ([]*dcc.DeliveryCode, error) {
	var out []*dcc.DeliveryCode
	for _, c := range r.s.codes {
		if c.Status() == dcc.Active && c.ExpiresAt().Before(now) && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

type fixedRandom int

func (r fixedRandom) IntN(int) (int, error) {
	return int(r), nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func stateMachine(t *testing.T, vertical workflow.Vertical, clock *testClock) *services.OrderStateMachine {
	t.Helper()
	sm, err := services.NewOrderStateMachine(services.StaticRules(workflow.DefaultForVertical(vertical)), clock.Now)
	require.NoError(t, err)
	return sm
}

func codeService(t *testing.T, code int, clock *testClock) *services.DCCGenerationService {
	t.Helper()
	s, err := services.NewDCCGenerationService(fixedRandom(code), clock.Now, services.DefaultDCCPolicy())
	require.NoError(t, err)
	return s
}

func address() order.AddressParams {
	return order.AddressParams{
		Street:  "Av. Julius Nyerere 1240",
		City:    "Maputo",
		Country: "MZ",
		Point:   mustPoint(-25.9532, 32.5887),
	}
}

func mustPoint(lat, long float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, long)
	if err != nil {
		panic(err)
	}
	return p
}

func items() []commands.ItemInput {
	return []commands.ItemInput{
		{ProductID: kernel.NewUUID(), Name: "Matapa", Quantity: 2, UnitPrice: decimal.RequireFromString("180.00")},
		{ProductID: kernel.NewUUID(), Name: "Refresco", Quantity: 1, UnitPrice: decimal.RequireFromString("45.50")},
	}
}

// seedOrder stores an order already moved to status.
func seedOrder(t *testing.T, s *store, method order.PaymentMethod, status order.Status) *order.Order {
	t.Helper()
	return seedOrderAt(t, s, method, status, placedAt)
}

// seedOrderAt stores an order placed and moved to status at at.
func seedOrderAt(t *testing.T, s *store, method order.PaymentMethod, status order.Status, at time.Time) *order.Order {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		items(), address(), method, "")
	require.NoError(t, err)

	total, err := kernel.NewMoney(decimal.RequireFromString("405.50"), kernel.DefaultCurrency)
	require.NoError(t, err)
	payment, err := order.NewPaymentInfo(method, "", total, order.PaymentPending)
	require.NoError(t, err)
	o, _, err := order.NewOrder(cmd.OrderID(), cmd.MerchantID(), cmd.CustomerID(), cmd.Items(), cmd.Address(),
		payment, at)
	require.NoError(t, err)

	if status != order.Pending {
		_, err = o.ChangeStatus(status, at)
		require.NoError(t, err)
	}
	s.orders[o.ID()] = o
	o.SyncVersion(1)
	return o
}

func seedCode(t *testing.T, s *store, orderID kernel.UUID, code string, maxAttempts int) *dcc.DeliveryCode {
	t.Helper()
	c, _, err := dcc.NewDeliveryCode(orderID, code, maxAttempts, placedAt, placedAt.Add(24*time.Hour))
	require.NoError(t, err)
	c.SyncVersion(1)
	s.codes[orderID] = c
	return c
}
