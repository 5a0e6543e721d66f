package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	transport := &TransportError{Op: "bills.getById", StatusCode: 502, Err: errors.New("bad gateway")}
	stale := &StaleError{BillID: "b1", Err: transport}

	tests := []struct {
		name       string
		err        error
		validation bool
		auth       bool
		notFound   bool
		transport  bool
		stale      bool
	}{
		{name: "validation", err: Validation(ReasonExceedsTotal), validation: true},
		{name: "wrapped validation", err: fmt.Errorf("submit: %w", Validation(ReasonInvalidAmount)), validation: true},
		{name: "auth", err: fmt.Errorf("bills.getById: %w", ErrUnauthenticated), auth: true},
		{name: "not found", err: fmt.Errorf("payment p1: %w", ErrNotFound), notFound: true},
		{name: "transport", err: transport, transport: true},
		{name: "stale wraps transport", err: stale, transport: true, stale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err), "IsValidation")
			assert.Equal(t, tt.auth, IsAuthentication(tt.err), "IsAuthentication")
			assert.Equal(t, tt.notFound, IsNotFound(tt.err), "IsNotFound")
			assert.Equal(t, tt.transport, IsTransport(tt.err), "IsTransport")
			assert.Equal(t, tt.stale, IsStale(tt.err), "IsStale")
		})
	}
}

func TestReason(t *testing.T) {
	assert.Equal(t, ReasonExceedsTotal, Reason(fmt.Errorf("x: %w", Validation(ReasonExceedsTotal))))
	assert.Equal(t, "", Reason(ErrNotFound))
}

func TestTransportErrorMessage(t *testing.T) {
	err := &TransportError{Op: "shops.search", Err: errors.New("connection refused")}
	assert.Equal(t, "shops.search: connection refused", err.Error())

	err = &TransportError{Op: "shops.search", StatusCode: 500, Err: errors.New("boom")}
	assert.Equal(t, "shops.search: server returned 500: boom", err.Error())
}
