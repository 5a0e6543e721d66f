package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/state"
)

func testBill(id, total string, payments ...string) *models.Bill {
	b := &models.Bill{
		ID:            id,
		InvoiceNumber: "INV-" + id,
		ShopName:      "Green Pharmacy",
		DoctorName:    "Dr. Rao",
		TotalAmount:   d(total),
		Status:        models.BillStatusUnpaid,
	}
	for i, p := range payments {
		b.Payments = append(b.Payments, models.Payment{ID: fmt.Sprintf("%s-p%d", id, i), Amount: d(p)})
	}
	calculator.Apply(b)
	return b
}

func newBillService(fake *fakeBilling) (*BillService, *state.Store) {
	st := state.New()
	return NewBillService(fake, st, discardLogger()), st
}

func TestSubmitPayment(t *testing.T) {
	tests := []struct {
		name         string
		bill         *models.Bill
		amount       string
		validateFunc func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store)
	}{
		{
			name:   "completing the total marks the bill paid",
			bill:   testBill("b1", "100.00", "40.00"),
			amount: "60.00",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				require.NoError(t, err)
				assert.True(t, d("100").Equal(view.Summary.Paid), "paid = %s", view.Summary.Paid)
				assert.True(t, view.Summary.Remaining.IsZero())
				assert.Equal(t, models.BillStatusPaid, view.Summary.Status)
				assert.Equal(t, models.BillStatusPaid, view.Bill.Status)
				assert.Equal(t, calculator.Transition{From: models.BillStatusUnpaid, To: models.BillStatusPaid}, view.Transition)

				stored, ok := st.Bill("b1")
				require.True(t, ok)
				assert.Len(t, stored.Payments, 2)
				assert.Equal(t, models.BillStatusPaid, stored.Status)
			},
		},
		{
			name:   "partial payment stays unpaid",
			bill:   testBill("b1", "100", "10"),
			amount: " 25.5 ",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				require.NoError(t, err)
				assert.True(t, d("35.5").Equal(view.Summary.Paid))
				assert.True(t, d("64.5").Equal(view.Summary.Remaining))
				assert.Equal(t, models.BillStatusUnpaid, view.Summary.Status)
				assert.False(t, view.Transition.Changed())
			},
		},
		{
			name:   "exceeding the total is rejected locally",
			bill:   testBill("b1", "50.00"),
			amount: "75.00",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				assert.Equal(t, apperr.ReasonExceedsTotal, apperr.Reason(err))
				assert.Nil(t, view)
				assert.Empty(t, fake.Calls(), "validation failures must not reach the network")
				assert.Empty(t, st.Bills())
			},
		},
		{
			name:   "negative amount",
			bill:   testBill("b1", "50"),
			amount: "-5",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				assert.Equal(t, apperr.ReasonInvalidAmount, apperr.Reason(err))
				assert.Empty(t, fake.Calls())
			},
		},
		{
			name:   "non-numeric amount",
			bill:   testBill("b1", "50"),
			amount: "abc",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				assert.Equal(t, apperr.ReasonInvalidAmount, apperr.Reason(err))
				assert.Empty(t, fake.Calls())
			},
		},
		{
			name:   "zero amount",
			bill:   testBill("b1", "50"),
			amount: "0",
			validateFunc: func(t *testing.T, view *BillView, err error, fake *fakeBilling, st *state.Store) {
				assert.True(t, apperr.IsValidation(err))
				assert.Empty(t, fake.Calls())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBilling(tt.bill)
			svc, st := newBillService(fake)

			view, err := svc.SubmitPayment(context.Background(), tt.bill, tt.amount)
			tt.validateFunc(t, view, err, fake, st)
		})
	}
}

func TestSubmitPayment_IncreasesByExactlyTheAmount(t *testing.T) {
	amounts := []string{"0.01", "1", "33.33", "49.99", "50"}

	for _, a := range amounts {
		t.Run(a, func(t *testing.T) {
			bill := testBill("b1", "100", "25", "25")
			fake := newFakeBilling(bill)
			svc, _ := newBillService(fake)

			before := calculator.CurrentPayment(bill.Payments)
			view, err := svc.SubmitPayment(context.Background(), bill, a)
			require.NoError(t, err)

			assert.True(t, before.Add(d(a)).Equal(view.Summary.Paid), "paid = %s", view.Summary.Paid)
		})
	}
}

func TestSubmitPayment_RefreshOnlyAfterConfirmation(t *testing.T) {
	bill := testBill("b1", "100")
	fake := newFakeBilling(bill)
	svc, _ := newBillService(fake)

	_, err := svc.SubmitPayment(context.Background(), bill, "10")
	require.NoError(t, err)
	assert.Equal(t, []string{"CreatePayment", "GetBill"}, fake.Calls())
}

func TestSubmitPayment_CreateFailure(t *testing.T) {
	bill := testBill("b1", "100")
	fake := newFakeBilling(bill)
	fake.createErr = &apperr.TransportError{Op: "bills.addPayment", Err: errors.New("connection reset")}
	svc, st := newBillService(fake)

	_, err := svc.SubmitPayment(context.Background(), bill, "10")
	assert.True(t, apperr.IsTransport(err))
	assert.False(t, apperr.IsStale(err), "a failed mutation is not stale")
	assert.Equal(t, []string{"CreatePayment"}, fake.Calls())
	assert.Empty(t, st.Bills())
}

func TestSubmitPayment_RefreshFailureIsStale(t *testing.T) {
	bill := testBill("b1", "100")
	fake := newFakeBilling(bill)
	fake.getErr = &apperr.TransportError{Op: "bills.getById", StatusCode: 502, Err: errors.New("bad gateway")}
	svc, st := newBillService(fake)

	_, err := svc.SubmitPayment(context.Background(), bill, "10")

	var stale *apperr.StaleError
	require.True(t, errors.As(err, &stale), "err = %v", err)
	assert.Equal(t, "b1", stale.BillID)
	assert.True(t, apperr.IsTransport(err))
	assert.Empty(t, st.Bills(), "nothing is published without an authoritative read")

	// The payment was not rolled back.
	fake.getErr = nil
	fresh, err := fake.GetBill(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, fresh.Payments, 1)
}

func TestSubmitPayment_CancelledDiscardsResponse(t *testing.T) {
	bill := testBill("b1", "100")
	fake := newFakeBilling(bill)
	svc, st := newBillService(fake)
	st.SetBills([]models.Bill{*bill})

	ctx, cancel := context.WithCancel(context.Background())
	fake.afterCreate = cancel

	_, err := svc.SubmitPayment(ctx, bill, "10")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsDiscarded(err))
	assert.Equal(t, []string{"CreatePayment"}, fake.Calls(), "no refresh after the caller went away")

	stored, ok := st.Bill("b1")
	require.True(t, ok)
	assert.Empty(t, stored.Payments, "state must not change")
}

func TestDeletePayment(t *testing.T) {
	t.Run("deleting the only payment reverts to unpaid", func(t *testing.T) {
		bill := testBill("b1", "100", "100")
		require.Equal(t, models.BillStatusPaid, bill.Status)
		fake := newFakeBilling(bill)
		svc, st := newBillService(fake)

		view, err := svc.DeletePayment(context.Background(), bill, bill.Payments[0].ID)
		require.NoError(t, err)

		assert.Equal(t, models.BillStatusUnpaid, view.Summary.Status)
		assert.Equal(t, calculator.Transition{From: models.BillStatusPaid, To: models.BillStatusUnpaid}, view.Transition)
		assert.True(t, d("100").Equal(view.Summary.Remaining))
		assert.Equal(t, []string{"DeletePayment", "GetBill"}, fake.Calls())

		stored, ok := st.Bill("b1")
		require.True(t, ok)
		assert.Equal(t, models.BillStatusUnpaid, stored.Status)
	})

	t.Run("already deleted payment is a no-op", func(t *testing.T) {
		shown := testBill("b1", "100", "40")
		fake := newFakeBilling(testBill("b1", "100"))
		svc, _ := newBillService(fake)

		view, err := svc.DeletePayment(context.Background(), shown, shown.Payments[0].ID)
		require.NoError(t, err)
		assert.Empty(t, view.Bill.Payments)
		assert.Equal(t, []string{"DeletePayment", "GetBill"}, fake.Calls())
	})

	t.Run("payment of another bill is never sent", func(t *testing.T) {
		b1 := testBill("b1", "100", "40")
		b2 := testBill("b2", "100", "100")
		fake := newFakeBilling(b1, b2)
		svc, _ := newBillService(fake)

		view, err := svc.DeletePayment(context.Background(), b1, b2.Payments[0].ID)
		require.NoError(t, err)
		assert.Len(t, view.Bill.Payments, 1)
		assert.Equal(t, []string{"GetBill"}, fake.Calls())

		other, err := fake.GetBill(context.Background(), "b2")
		require.NoError(t, err)
		assert.Len(t, other.Payments, 1, "b2 must keep its payment")
		assert.Equal(t, models.BillStatusPaid, calculator.DeriveStatus(other.TotalAmount, other.Payments))
	})

	t.Run("transport failure does not refresh", func(t *testing.T) {
		bill := testBill("b1", "100", "40")
		fake := newFakeBilling(bill)
		fake.deleteErr = &apperr.TransportError{Op: "bills.deletePayment", Err: errors.New("timeout")}
		svc, _ := newBillService(fake)

		_, err := svc.DeletePayment(context.Background(), bill, bill.Payments[0].ID)
		assert.True(t, apperr.IsTransport(err))
		assert.Equal(t, []string{"DeletePayment"}, fake.Calls())
	})

	t.Run("authentication failure propagates", func(t *testing.T) {
		bill := testBill("b1", "100", "40")
		fake := newFakeBilling(bill)
		fake.deleteErr = apperr.ErrUnauthenticated
		svc, _ := newBillService(fake)

		_, err := svc.DeletePayment(context.Background(), bill, bill.Payments[0].ID)
		assert.True(t, apperr.IsAuthentication(err))
	})

	t.Run("refresh failure is stale", func(t *testing.T) {
		bill := testBill("b1", "100", "40")
		fake := newFakeBilling(bill)
		fake.getErr = &apperr.TransportError{Op: "bills.getById", Err: errors.New("timeout")}
		svc, _ := newBillService(fake)

		_, err := svc.DeletePayment(context.Background(), bill, bill.Payments[0].ID)
		assert.True(t, apperr.IsStale(err))
	})
}

func TestBillService_Refresh(t *testing.T) {
	bill := testBill("b1", "10", "10")
	bill.Status = models.BillStatusUnpaid // server reported a stale status
	fake := newFakeBilling(bill)
	svc, st := newBillService(fake)

	view, err := svc.Refresh(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, view.Bill.Status)

	require.NoError(t, fake.DeleteBill(context.Background(), "b1"))
	_, err = svc.Refresh(context.Background(), "b1")
	assert.True(t, apperr.IsNotFound(err))
	_, ok := st.Bill("b1")
	assert.False(t, ok)
}

func TestBillService_Load(t *testing.T) {
	paid := testBill("b1", "10", "10")
	paid.Status = models.BillStatusUnpaid
	unpaid := testBill("b2", "10", "5")
	unpaid.DoctorName = "Dr. Mehta"
	fake := newFakeBilling(paid, unpaid)
	svc, st := newBillService(fake)
	ctx := context.Background()

	bills, err := svc.Load(ctx, BillFilter{Status: state.StatusPaid})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "b1", bills[0].ID)
	assert.Equal(t, models.BillStatusPaid, bills[0].Status)
	assert.Len(t, st.Bills(), 2, "state holds the unfiltered list")

	bills, err = svc.Load(ctx, BillFilter{Status: state.StatusAll, By: state.SearchDoctor, Query: "Mehta"})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "b2", bills[0].ID)
	assert.Contains(t, fake.Calls(), "ListBills")
}

func TestBillService_Create(t *testing.T) {
	fake := newFakeBilling()
	svc, st := newBillService(fake)
	shop := models.Shop{ID: "s1", ShopName: "Green Pharmacy", DoctorName: "Dr. Rao"}

	_, err := svc.Create(context.Background(), shop, &calculator.Draft{})
	assert.ErrorIs(t, err, ErrEmptyDraft)
	assert.Empty(t, fake.Calls())

	draft := &calculator.Draft{}
	draft.Add(models.Product{ID: "p1", Name: "Gauze", Price: d("2.50")})
	draft.Add(models.Product{ID: "p1", Name: "Gauze", Price: d("2.50")})
	draft.Add(models.Product{ID: "p2", Name: "Tape", Price: d("1.25")})

	view, err := svc.Create(context.Background(), shop, draft)
	require.NoError(t, err)
	assert.True(t, d("6.25").Equal(view.Bill.TotalAmount))
	assert.Equal(t, models.BillStatusUnpaid, view.Summary.Status)
	assert.Equal(t, "s1", view.Bill.ShopID)
	require.Len(t, view.Bill.Products, 2)
	assert.Equal(t, 2, view.Bill.Products[0].Quantity)

	bills := st.Bills()
	require.Len(t, bills, 1)
	assert.Equal(t, view.Bill.ID, bills[0].ID)
}

func TestBillService_Delete(t *testing.T) {
	bill := testBill("b1", "10")
	fake := newFakeBilling(bill)
	svc, st := newBillService(fake)
	st.SetBills([]models.Bill{*bill})

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.Empty(t, st.Bills())

	// Second delete hits not found and is tolerated.
	require.NoError(t, svc.Delete(context.Background(), "b1"))
}
