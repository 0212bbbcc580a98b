package supplier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

var start = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	c := &clock{t: start}
	svc := NewService(formats.NewStore(t.TempDir(), "backups", nil), nil)
	svc.now = c.now
	return svc, c
}

func mustSupplier(t *testing.T, svc *Service, name string) models.Supplier {
	t.Helper()
	sup, err := svc.AddSupplier(models.Supplier{Name: name, ContactPerson: "Awa " + name, Rating: 4})
	require.NoError(t, err)
	return sup
}

func items() []models.POItem {
	return []models.POItem{
		{ProductID: "PRD-1", ProductName: "Rice", Quantity: 10, UnitPrice: 1.25},
		{ProductID: "PRD-2", ProductName: "Oil", Quantity: 3, UnitPrice: 4},
	}
}

func days(n int) *time.Time {
	t := start.AddDate(0, 0, n)
	return &t
}

func TestAddSupplierAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)

	first := mustSupplier(t, svc, "Acme")
	second := mustSupplier(t, svc, "Globex")

	assert.Equal(t, "SUP0001", first.ID)
	assert.Equal(t, "SUP0002", second.ID)
	assert.True(t, first.Active)
	assert.Equal(t, models.DefaultPaymentTerms, first.PaymentTerms)
	assert.Equal(t, start, first.CreatedAt)

	_, err := svc.AddSupplier(models.Supplier{Name: " "})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.AddSupplier(models.Supplier{Name: "Bad", Rating: 6})
	assert.ErrorIs(t, err, models.ErrValidation)

	third := mustSupplier(t, svc, "Initech")
	assert.Equal(t, "SUP0003", third.ID)
}

func TestUpdateAndDeactivateSupplier(t *testing.T) {
	svc, c := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")

	c.advance(time.Hour)
	phone := "+221 77 000 00 00"
	updated, err := svc.UpdateSupplier(sup.ID, SupplierPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Acme", updated.Name)
	assert.Equal(t, start.Add(time.Hour), updated.UpdatedAt)

	bad := 9.0
	_, err = svc.UpdateSupplier(sup.ID, SupplierPatch{Rating: &bad})
	assert.ErrorIs(t, err, models.ErrValidation)
	got, _ := svc.GetSupplier(sup.ID)
	assert.Equal(t, 4.0, got.Rating)

	inactive, err := svc.DeactivateSupplier(sup.ID)
	require.NoError(t, err)
	assert.False(t, inactive.Active)

	_, err = svc.UpdateSupplier("SUP9999", SupplierPatch{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSearchSuppliers(t *testing.T) {
	svc, _ := newTestService(t)
	mustSupplier(t, svc, "Acme Foods")
	mustSupplier(t, svc, "Globex")

	assert.Len(t, svc.SearchSuppliers("acme"), 1)
	assert.Len(t, svc.SearchSuppliers("awa"), 2, "contact person matches")
	assert.Empty(t, svc.SearchSuppliers("initech"))
}

func TestCreatePurchaseOrder(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")

	po, err := svc.CreatePurchaseOrder(sup.ID, items(), days(7), "first order")
	require.NoError(t, err)

	assert.Equal(t, "PO000001", po.ID)
	assert.Equal(t, models.POPending, po.Status)
	assert.Equal(t, models.PaymentUnpaid, po.PaymentStatus)
	assert.Equal(t, 24.5, po.TotalAmount)
	assert.Equal(t, start, po.OrderDate)
	assert.Equal(t, *days(7), *po.ExpectedDelivery)

	next, err := svc.CreatePurchaseOrder(sup.ID, items()[:1], nil, "")
	require.NoError(t, err)
	assert.Equal(t, "PO000002", next.ID)
	assert.Len(t, svc.PendingOrders(), 2)
}

func TestCreatePurchaseOrderRejectsUnknownSupplier(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePurchaseOrder("SUP0404", items(), nil, "")
	assert.ErrorIs(t, err, models.ErrUnknownSupplier)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, svc.Orders())

	sup := mustSupplier(t, svc, "Acme")
	_, err = svc.CreatePurchaseOrder(sup.ID, nil, nil, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.CreatePurchaseOrder(sup.ID, []models.POItem{{ProductID: "PRD-1", Quantity: 0}}, nil, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTotalAmountIsFixedAtCreation(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")
	po, err := svc.CreatePurchaseOrder(sup.ID, items(), nil, "")
	require.NoError(t, err)

	po.Items[0].Quantity = 1000
	stored, err := svc.GetOrder(po.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Items[0].Quantity)
	assert.Equal(t, 24.5, stored.TotalAmount)
}

func TestUpdatePOStatus(t *testing.T) {
	svc, c := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")
	po, err := svc.CreatePurchaseOrder(sup.ID, items(), days(3), "")
	require.NoError(t, err)

	_, err = svc.UpdatePOStatus(po.ID, "lost", "")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdatePOStatus(po.ID, "delivered", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	for _, status := range []string{"confirmed", "SHIPPED"} {
		_, err = svc.UpdatePOStatus(po.ID, status, "")
		require.NoError(t, err)
	}

	c.advance(48 * time.Hour)
	delivered, err := svc.UpdatePOStatus(po.ID, "delivered", "left at the back door")
	require.NoError(t, err)
	assert.Equal(t, models.PODelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, start.Add(48*time.Hour), *delivered.DeliveredAt)
	assert.Equal(t, "left at the back door", delivered.Notes)

	_, err = svc.UpdatePOStatus(po.ID, "cancelled", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition, "delivered is terminal")

	_, err = svc.UpdatePOStatus("PO999999", "confirmed", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")
	po, err := svc.CreatePurchaseOrder(sup.ID, items(), nil, "")
	require.NoError(t, err)

	paid, err := svc.UpdatePaymentStatus(po.ID, "partial")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, paid.PaymentStatus)

	_, err = svc.UpdatePaymentStatus(po.ID, "refunded")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func deliver(t *testing.T, svc *Service, c *clock, supplierID string, expected *time.Time, deliveredAt time.Time) {
	t.Helper()
	c.t = start
	po, err := svc.CreatePurchaseOrder(supplierID, items(), expected, "")
	require.NoError(t, err)
	for _, status := range []string{"confirmed", "shipped"} {
		_, err = svc.UpdatePOStatus(po.ID, status, "")
		require.NoError(t, err)
	}
	c.t = deliveredAt
	_, err = svc.UpdatePOStatus(po.ID, "delivered", "")
	require.NoError(t, err)
}

func TestPerformance(t *testing.T) {
	svc, c := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")
	other := mustSupplier(t, svc, "Globex")

	deliver(t, svc, c, sup.ID, days(5), start.AddDate(0, 0, 5))
	deliver(t, svc, c, sup.ID, days(5), start.AddDate(0, 0, 7).Add(3*time.Hour))
	deliver(t, svc, c, sup.ID, days(5), start.AddDate(0, 0, 9))
	deliver(t, svc, c, sup.ID, nil, start.AddDate(0, 0, 30))
	deliver(t, svc, c, other.ID, days(1), start.AddDate(0, 0, 20))

	cancelled, err := svc.CreatePurchaseOrder(sup.ID, items(), days(5), "")
	require.NoError(t, err)
	_, err = svc.UpdatePOStatus(cancelled.ID, "cancelled", "")
	require.NoError(t, err)
	_, err = svc.CreatePurchaseOrder(sup.ID, items(), days(-10), "")
	require.NoError(t, err)

	perf, err := svc.Performance(sup.ID)
	require.NoError(t, err)

	assert.Equal(t, "Acme", perf.SupplierName)
	assert.Equal(t, 6, perf.TotalOrders)
	assert.InDelta(t, 6*24.5, perf.TotalValue, 1e-9)
	assert.Equal(t, 4, perf.DeliveredOrders)
	assert.Equal(t, 1, perf.CancelledOrders)
	assert.Equal(t, 2, perf.OnTimeDeliveries)
	assert.Equal(t, 2, perf.LateDeliveries)
	assert.InDelta(t, 50.0, perf.OnTimeRate, 1e-9)
	assert.InDelta(t, 3.0, perf.AverageDelayDays, 1e-9)

	_, err = svc.Performance("SUP0404")
	assert.ErrorIs(t, err, models.ErrUnknownSupplier)
}

func TestPerformanceWithoutDeliveries(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")

	perf, err := svc.Performance(sup.ID)
	require.NoError(t, err)
	assert.Zero(t, perf.TotalOrders)
	assert.Zero(t, perf.OnTimeRate)
	assert.Zero(t, perf.AverageDelayDays)
}

func TestDeletedSupplierLeavesDanglingOrders(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")
	po, err := svc.CreatePurchaseOrder(sup.ID, items(), nil, "")
	require.NoError(t, err)

	resolved, ok := svc.ResolveSupplier(po)
	require.True(t, ok)
	assert.Equal(t, "Acme", resolved.Name)

	require.NoError(t, svc.DeleteSupplier(sup.ID))
	assert.ErrorIs(t, svc.DeleteSupplier(sup.ID), models.ErrNotFound)

	history := svc.OrderHistory(sup.ID)
	require.Len(t, history, 1)
	_, ok = svc.ResolveSupplier(history[0])
	assert.False(t, ok)
}

func TestSaveAndLoadRestoreCounters(t *testing.T) {
	for _, format := range []formats.Format{formats.JSON, formats.YAML, formats.SQLite} {
		t.Run(string(format), func(t *testing.T) {
			svc, _ := newTestService(t)
			sup := mustSupplier(t, svc, "Acme")
			mustSupplier(t, svc, "Globex")
			_, err := svc.CreatePurchaseOrder(sup.ID, items(), days(4), "note")
			require.NoError(t, err)

			path := "suppliers." + string(format)
			require.NoError(t, svc.SaveTo(format, path))

			fresh := NewService(svc.store, nil)
			fresh.now = svc.now
			require.NoError(t, fresh.LoadFrom(format, path))

			assert.Equal(t, svc.Suppliers(), fresh.Suppliers())
			assert.Equal(t, svc.Orders(), fresh.Orders())

			next := mustSupplier(t, fresh, "Initech")
			assert.Equal(t, "SUP0003", next.ID)
			po, err := fresh.CreatePurchaseOrder(sup.ID, items(), nil, "")
			require.NoError(t, err)
			assert.Equal(t, "PO000002", po.ID)
		})
	}
}

func TestSaveToSingleCollectionFormat(t *testing.T) {
	svc, _ := newTestService(t)
	sup := mustSupplier(t, svc, "Acme")

	require.NoError(t, svc.SaveTo(formats.CSV, "suppliers.csv"), "orders are empty")

	_, err := svc.CreatePurchaseOrder(sup.ID, items(), nil, "")
	require.NoError(t, err)
	err = svc.SaveTo(formats.CSV, "suppliers.csv")
	assert.ErrorIs(t, err, models.ErrMultipleCollections)
}

func TestSequence(t *testing.T) {
	assert.Equal(t, 12, sequence("SUP0012", "SUP"))
	assert.Equal(t, 7, sequence("PO000007", "PO"))
	assert.Equal(t, 0, sequence("legacy", "SUP"))
	assert.Equal(t, 0, sequence("0012", "SUP"))
}

func TestLoadFromChecksPaymentStatus(t *testing.T) {
	svc, _ := newTestService(t)
	order := func(payment string) formats.Dataset {
		po := formats.Record{
			"id":             "PO000001",
			"supplier_id":    "SUP0001",
			"status":         "Shipped",
			"payment_status": payment,
		}
		ds := formats.Dataset{ordersTable: {po}}
		ds[suppliersTable] = []formats.Record{{"id": "SUP0001", "name": "Acme", "active": true}}
		return ds
	}

	require.NoError(t, svc.store.Save(order("overdue"), formats.JSON, "suppliers.json"))
	err := svc.LoadFrom(formats.JSON, "suppliers.json")
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
	assert.Empty(t, svc.Orders())

	require.NoError(t, svc.store.Save(order(" PAID "), formats.JSON, "suppliers.json"))
	require.NoError(t, svc.LoadFrom(formats.JSON, "suppliers.json"))
	require.Len(t, svc.Orders(), 1)
	assert.Equal(t, models.PaymentPaid, svc.Orders()[0].PaymentStatus)
	assert.Equal(t, models.POShipped, svc.Orders()[0].Status)
}
