// Command invoicer is the terminal client for the billing service.
//
// Usage:
//
//	invoicer [-server URL] <command> [flags] [args]
//
// Run "invoicer help" for the command list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/session"
	"github.com/mmynk/invoicer/internal/state"
	"github.com/mmynk/invoicer/internal/storage/sqlite"
	"github.com/mmynk/invoicer/pkg/logging"
)

// app holds the wired services for one invocation.
type app struct {
	out     io.Writer
	auth    *service.AuthService
	bills   *service.BillService
	shops   *service.ShopService
	catalog *service.CatalogService
	state   *state.Store
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

// commands is filled in init: the handlers reach back into it through lookup.
var commands []command

func init() {
	commands = []command{
		{"login", "login -email EMAIL -password PASSWORD", "sign in and save the session", runLogin},
		{"logout", "logout", "discard the saved session", runLogout},
		{"whoami", "whoami [-verify]", "show the signed-in user", runWhoami},
		{"shops", "shops [-q QUERY]", "search shops", runShops},
		{"shop", "shop ID", "show a shop and its bills", runShop},
		{"shop-create", "shop-create -name NAME -doctor NAME -location TEXT -contact NUMBER", "create a shop", runShopCreate},
		{"shop-delete", "shop-delete ID", "delete a shop", runShopDelete},
		{"products", "products [-q QUERY]", "search the product catalog", runProducts},
		{"bills", "bills [-status all|paid|unpaid] [-by all|shop|doctor|invoice] [-q QUERY]", "list bills", runBills},
		{"bill", "bill ID", "show a bill with its payments", runBill},
		{"bill-create", "bill-create -shop ID -item PRODUCT[:QTY] [-item ...]", "raise a bill for a shop", runBillCreate},
		{"bill-delete", "bill-delete ID", "delete a bill", runBillDelete},
		{"pay", "pay BILL_ID AMOUNT", "record a payment", runPay},
		{"unpay", "unpay BILL_ID PAYMENT_ID", "delete a payment", runUnpay},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("invoicer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	serverFlag := fs.String("server", "", "Override server base URL (e.g. https://billing.example.com/api)")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 || fs.Arg(0) == "help" {
		usage(stdout)
		return 0
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if *serverFlag != "" {
		cfg.ServerURL = strings.TrimRight(*serverFlag, "/")
	}
	logging.SetupWithLevel(cfg.LogLevel)

	sessions, err := sqlite.New(cfg.SessionDB)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, sessions, stdout)
	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		fmt.Fprintln(stderr, describeError(err))
		return 1
	}
	return 0
}

func newApp(cfg *config.Client, sessions *sqlite.SQLiteStore, out io.Writer) *app {
	logger := slog.Default()
	transport := client.New(cfg.ServerURL, session.NewTokenSource(sessions),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
	)
	st := state.New()
	return &app{
		out:     out,
		auth:    service.NewAuthService(transport, sessions, logger),
		bills:   service.NewBillService(transport, st, logger),
		shops:   service.NewShopService(transport, st, logger),
		catalog: service.NewCatalogService(transport),
		state:   st,
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicer [-server URL] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
		fmt.Fprintf(w, "  %-12s   invoicer %s\n", "", c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: INVOICER_SERVER, INVOICER_SESSION_DB, INVOICER_TIMEOUT, LOG_LEVEL")
}

// describeError turns err into the line shown to the user.
func describeError(err error) string {
	var stale *apperr.StaleError
	switch {
	case errors.As(err, &stale):
		return fmt.Sprintf("Change saved, but could not refresh display. Run `invoicer bill %s` to retry.\n  cause: %v", stale.BillID, stale.Err)
	case apperr.IsValidation(err):
		return "Invalid input: " + apperr.Reason(err)
	case apperr.IsAuthentication(err):
		return "Not signed in or session expired. Run `invoicer login` first."
	case apperr.IsNotFound(err):
		return "Not found: " + err.Error()
	case service.IsDiscarded(err):
		return "Cancelled: " + err.Error()
	case apperr.IsTransport(err):
		return "Could not reach the billing service (safe to retry): " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
