package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/state"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses flags and checks that exactly n positional args remain.
func parseArgs(fs *flag.FlagSet, args []string, n int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if fs.NArg() != n {
		cmd, _ := lookup(fs.Name())
		return nil, apperr.Validation("usage: invoicer " + cmd.usage)
	}
	return fs.Args(), nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	sess, err := a.auth.Login(ctx, strings.TrimSpace(*email), *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if _, err := parseArgs(newFlags("logout"), args, 0); err != nil {
		return err
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlags("whoami")
	verify := fs.Bool("verify", false, "ask the server to confirm the session")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	var (
		user *models.User
		err  error
	)
	if *verify {
		user, err = a.auth.Verify(ctx)
	} else {
		user, err = a.auth.CurrentUser(ctx)
	}
	if err != nil {
		return err
	}
	renderUser(a.out, user)
	return nil
}

func runShops(ctx context.Context, a *app, args []string) error {
	fs := newFlags("shops")
	query := fs.String("q", "", "search text")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	shops, err := a.shops.Search(ctx, *query)
	if err != nil {
		return err
	}
	renderShops(a.out, shops)
	return nil
}

func runShop(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("shop"), args, 1)
	if err != nil {
		return err
	}
	shop, err := a.shops.Get(ctx, pos[0])
	if err != nil {
		return err
	}
	renderShop(a.out, shop)
	return nil
}

func runShopCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("shop-create")
	var input models.ShopInput
	fs.StringVar(&input.ShopName, "name", "", "shop name")
	fs.StringVar(&input.DoctorName, "doctor", "", "doctor name")
	fs.StringVar(&input.Location, "location", "", "location")
	fs.StringVar(&input.ContactNumber, "contact", "", "contact number")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	shop, err := a.shops.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created shop %s (%s)\n", shop.ShopName, shop.ID)
	return nil
}

func runShopDelete(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("shop-delete"), args, 1)
	if err != nil {
		return err
	}
	if err := a.shops.Delete(ctx, pos[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted shop", pos[0])
	return nil
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlags("products")
	query := fs.String("q", "", "search text")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	products, err := a.catalog.SearchProducts(ctx, *query)
	if err != nil {
		return err
	}
	renderProducts(a.out, products)
	return nil
}

func runBills(ctx context.Context, a *app, args []string) error {
	fs := newFlags("bills")
	status := fs.String("status", "all", "all, paid or unpaid")
	by := fs.String("by", "all", "all, shop, doctor or invoice")
	query := fs.String("q", "", "search text")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	filter := service.BillFilter{Query: *query}
	var err error
	if filter.Status, err = state.ParseStatusFilter(*status); err != nil {
		return apperr.Validation(err.Error())
	}
	if filter.By, err = state.ParseSearchBy(*by); err != nil {
		return apperr.Validation(err.Error())
	}

	bills, err := a.bills.Load(ctx, filter)
	if err != nil {
		return err
	}
	renderBills(a.out, bills)
	return nil
}

func runBill(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("bill"), args, 1)
	if err != nil {
		return err
	}
	view, err := a.bills.Refresh(ctx, pos[0])
	if err != nil {
		return err
	}
	renderBill(a.out, view)
	return nil
}

// itemFlag collects repeated -item PRODUCT[:QTY] values.
type itemFlag []service.Selection

func (f *itemFlag) String() string {
	parts := make([]string, len(*f))
	for i, s := range *f {
		parts[i] = fmt.Sprintf("%s:%d", s.ProductID, s.Quantity)
	}
	return strings.Join(parts, ",")
}

func (f *itemFlag) Set(value string) error {
	sel, err := parseSelection(value)
	if err != nil {
		return err
	}
	*f = append(*f, sel)
	return nil
}

// parseSelection parses "PRODUCT" or "PRODUCT:QTY".
func parseSelection(value string) (service.Selection, error) {
	id, qtyText, hasQty := strings.Cut(strings.TrimSpace(value), ":")
	if id == "" {
		return service.Selection{}, fmt.Errorf("missing product id in %q", value)
	}
	qty := 1
	if hasQty {
		n, err := strconv.Atoi(qtyText)
		if err != nil || n < 1 {
			return service.Selection{}, fmt.Errorf("invalid quantity in %q", value)
		}
		qty = n
	}
	return service.Selection{ProductID: id, Quantity: qty}, nil
}

func runBillCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("bill-create")
	shopID := fs.String("shop", "", "shop id")
	var items itemFlag
	fs.Var(&items, "item", "PRODUCT[:QTY], repeatable")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if *shopID == "" {
		return apperr.Validation("-shop is required")
	}

	shop, err := a.shops.Get(ctx, *shopID)
	if err != nil {
		return err
	}
	draft, err := a.catalog.BuildDraft(ctx, items)
	if err != nil {
		return err
	}
	view, err := a.bills.Create(ctx, shop.Shop, draft)
	if err != nil {
		return err
	}
	renderBill(a.out, view)
	return nil
}

func runBillDelete(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("bill-delete"), args, 1)
	if err != nil {
		return err
	}
	if err := a.bills.Delete(ctx, pos[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted bill", pos[0])
	return nil
}

func runPay(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("pay"), args, 2)
	if err != nil {
		return err
	}
	if _, err := calculator.ParseAmount(pos[1]); err != nil {
		return err
	}

	current, err := a.bills.Refresh(ctx, pos[0])
	if err != nil {
		return err
	}
	view, err := a.bills.SubmitPayment(ctx, &current.Bill, pos[1])
	if err != nil {
		return err
	}
	renderBill(a.out, view)
	return nil
}

func runUnpay(ctx context.Context, a *app, args []string) error {
	pos, err := parseArgs(newFlags("unpay"), args, 2)
	if err != nil {
		return err
	}

	current, err := a.bills.Refresh(ctx, pos[0])
	if err != nil {
		return err
	}
	view, err := a.bills.DeletePayment(ctx, &current.Bill, pos[1])
	if err != nil {
		return err
	}
	renderBill(a.out, view)
	return nil
}
