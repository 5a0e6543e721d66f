// Package models defines the domain models shared by the invoicer client and
// the reference billing service.
//
// # Models
//
//   - Bill: a billing record for a shop visit, with line items and payments
//   - Payment: a single monetary contribution toward a Bill's total
//   - LineItem: a product copied onto a Bill at creation time
//   - Shop, Product: catalog records referenced when creating bills
//   - User, Session: the signed-in account and its persisted token
//
// # Money
//
// Every currency value is a decimal.Decimal. Amounts are encoded as JSON
// numbers (not strings) so they match the remote service's wire format.
//
// # Wire names
//
// JSON tags follow the remote billing service: identifiers are "_id" and
// field names are camelCase.
package models

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
