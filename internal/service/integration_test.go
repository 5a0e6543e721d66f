package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/server"
	"github.com/mmynk/invoicer/internal/session"
	"github.com/mmynk/invoicer/internal/state"
	"github.com/mmynk/invoicer/internal/storage/sqlite"
)

type testApp struct {
	auth    *AuthService
	bills   *BillService
	shops   *ShopService
	catalog *CatalogService
	state   *state.Store
	server  *sqlite.SQLiteStore
	hits    *atomic.Int32
}

// setupTestApp wires the services to a real billing server backed by a
// temp-dir SQLite database, with the session kept in a second database.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	serverStore, err := sqlite.New(filepath.Join(dir, "server.db"))
	require.NoError(t, err, "failed to create server store")
	sessionStore, err := sqlite.New(filepath.Join(dir, "session.db"))
	require.NoError(t, err, "failed to create session store")

	authenticator := auth.NewPasswordAuthenticator(serverStore).WithCost(bcrypt.MinCost)
	_, err = authenticator.Register(context.Background(), "jo@example.com", "Jo", "", "secret1")
	require.NoError(t, err)

	api := server.New(serverStore, authenticator, auth.NewJWTManager("test-secret", time.Hour), discardLogger()).Handler()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		serverStore.Close()
		sessionStore.Close()
	})

	transport := client.New(srv.URL+"/api", session.NewTokenSource(sessionStore))
	st := state.New()
	return &testApp{
		auth:    NewAuthService(transport, sessionStore, discardLogger()),
		bills:   NewBillService(transport, st, discardLogger()),
		shops:   NewShopService(transport, st, discardLogger()),
		catalog: NewCatalogService(transport),
		state:   st,
		server:  serverStore,
		hits:    hits,
	}
}

func TestIntegration_NoTokenNoRequest(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()
	bill := testBill("b1", "100", "100")

	_, err := app.bills.DeletePayment(ctx, bill, "b1-p0")
	assert.True(t, apperr.IsAuthentication(err), "err = %v", err)

	_, err = app.bills.SubmitPayment(ctx, testBill("b2", "100"), "10")
	assert.True(t, apperr.IsAuthentication(err))

	assert.Zero(t, app.hits.Load(), "missing token must fail before any request")
}

func TestIntegration_BillLifecycle(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	_, err := app.auth.Login(ctx, "jo@example.com", "secret1")
	require.NoError(t, err)

	for _, p := range []*models.Product{
		{Name: "Gauze", Price: d("25.00")},
		{Name: "Tape", Price: d("12.50")},
	} {
		require.NoError(t, app.server.CreateProduct(ctx, p))
	}
	products, err := app.catalog.SearchProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, products, 2)

	shop, err := app.shops.Create(ctx, models.ShopInput{
		ShopName: "Green Pharmacy", DoctorName: "Dr. Rao", Location: "MG Road", ContactNumber: "+91 98450 00000",
	})
	require.NoError(t, err)

	var selections []Selection
	for _, p := range products {
		qty := 2
		if p.Name == "Gauze" {
			qty = 3
		}
		selections = append(selections, Selection{ProductID: p.ID, Quantity: qty})
	}
	draft, err := app.catalog.BuildDraft(ctx, selections)
	require.NoError(t, err)

	created, err := app.bills.Create(ctx, *shop, draft)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(created.Bill.TotalAmount), "total = %s", created.Bill.TotalAmount)
	assert.Regexp(t, `^INV-\d{8}-`, created.Bill.InvoiceNumber)

	bill := created.Bill
	view, err := app.bills.SubmitPayment(ctx, &bill, "40.00")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusUnpaid, view.Summary.Status)

	bill = view.Bill
	_, err = app.bills.SubmitPayment(ctx, &bill, "75")
	assert.Equal(t, apperr.ReasonExceedsTotal, apperr.Reason(err))

	view, err = app.bills.SubmitPayment(ctx, &bill, "60.00")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, view.Summary.Status)
	assert.True(t, view.Summary.Remaining.IsZero())
	require.Len(t, view.Bill.Payments, 2)

	bill = view.Bill
	view, err = app.bills.DeletePayment(ctx, &bill, bill.Payments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusUnpaid, view.Summary.Status)
	assert.True(t, d("60").Equal(view.Summary.Remaining))

	// A concurrent actor already removed it: tolerated.
	view, err = app.bills.DeletePayment(ctx, &bill, bill.Payments[1].ID)
	require.NoError(t, err)
	assert.Len(t, view.Bill.Payments, 1)

	details, err := app.shops.Get(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, details.Bills, 1)

	unpaid, err := app.bills.Load(ctx, BillFilter{Status: "Unpaid", By: "Invoice", Query: bill.InvoiceNumber})
	require.NoError(t, err)
	assert.Len(t, unpaid, 1)

	require.NoError(t, app.bills.Delete(ctx, bill.ID))
	_, err = app.bills.Refresh(ctx, bill.ID)
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, app.auth.Logout(ctx))
	_, err = app.bills.Load(ctx, BillFilter{})
	assert.True(t, apperr.IsAuthentication(err))
}
