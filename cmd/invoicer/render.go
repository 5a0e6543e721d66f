package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/service"
)

const dateFormat = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	if u.Phone != "" {
		fmt.Fprintf(w, "Phone: %s\n", u.Phone)
	}
	fmt.Fprintf(w, "ID:    %s\n", u.ID)
}

func renderShops(w io.Writer, shops []models.Shop) {
	if len(shops) == 0 {
		fmt.Fprintln(w, "No shops found")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tSHOP\tDOCTOR\tLOCATION\tCONTACT")
	for _, s := range shops {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.ShopName, s.DoctorName, s.Location, s.ContactNumber)
	}
	tw.Flush()
}

func renderShop(w io.Writer, s *models.ShopDetails) {
	fmt.Fprintf(w, "%s (%s)\n", s.ShopName, s.ID)
	fmt.Fprintf(w, "Doctor:   %s\n", s.DoctorName)
	fmt.Fprintf(w, "Location: %s\n", s.Location)
	fmt.Fprintf(w, "Contact:  %s\n\n", s.ContactNumber)
	renderBills(w, s.Bills)
}

func renderProducts(w io.Writer, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, money(p.Price), p.Description)
	}
	tw.Flush()
}

// renderBills lists bills with figures derived from their payments.
func renderBills(w io.Writer, bills []models.Bill) {
	if len(bills) == 0 {
		fmt.Fprintln(w, "No bills found")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tINVOICE\tSHOP\tDOCTOR\tTOTAL\tPAID\tREMAINING\tSTATUS\tDATE")
	for i := range bills {
		b := &bills[i]
		s := calculator.Reconcile(b)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.InvoiceNumber, b.ShopName, b.DoctorName,
			money(s.Total), money(s.Paid), money(s.Remaining), s.Status, b.Date.Format(dateFormat))
	}
	tw.Flush()
}

func renderBill(w io.Writer, v *service.BillView) {
	b := &v.Bill
	s := v.Summary

	fmt.Fprintf(w, "Invoice %s (%s)\n", b.InvoiceNumber, b.ID)
	fmt.Fprintf(w, "Shop:      %s\n", b.ShopName)
	fmt.Fprintf(w, "Doctor:    %s\n", b.DoctorName)
	fmt.Fprintf(w, "Date:      %s\n", b.Date.Format(dateFormat))
	if b.CreatedBy.Name != "" {
		fmt.Fprintf(w, "Created by %s\n", b.CreatedBy.Name)
	}
	fmt.Fprintln(w)

	if len(b.Products) > 0 {
		tw := table(w)
		fmt.Fprintln(tw, "PRODUCT\tPRICE\tQTY\tSUBTOTAL")
		for _, p := range b.Products {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, money(p.Price), p.Quantity, money(p.Subtotal()))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if len(b.Payments) > 0 {
		tw := table(w)
		fmt.Fprintln(tw, "PAYMENT\tAMOUNT\tDATE")
		for _, p := range b.Payments {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, money(p.Amount), p.Date.Format(dateFormat))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total:     %s\n", money(s.Total))
	fmt.Fprintf(w, "Paid:      %s\n", money(s.Paid))
	fmt.Fprintf(w, "Remaining: %s\n", money(s.Remaining))
	if s.Overpaid.IsPositive() {
		fmt.Fprintf(w, "WARNING: overpaid by %s\n", money(s.Overpaid))
	}
	fmt.Fprintf(w, "Status:    %s", s.Status)
	if v.Transition.Changed() {
		fmt.Fprintf(w, " (was %s)", v.Transition.From)
	}
	fmt.Fprintln(w)
}
