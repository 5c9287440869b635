package remote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsResourceNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"entity missing", NotFound("woocommerce_rest_shop_order_invalid_id", "Invalid ID."), true},
		{"wrapped", fmt.Errorf("load order: %w", NotFound("", "gone")), true},
		{"missing route", NotFound(CodeNoRoute, "No route was found"), false},
		{"server error", &Error{Kind: KindServer, Status: 500}, false},
		{"permission", &Error{Kind: KindServer, Code: "rest_forbidden", Status: 403}, false},
		{"plain error", errors.New("not found"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsResourceNotFound(tt.err))
		})
	}
}

func TestIsInvalidParameter(t *testing.T) {
	assert.True(t, IsInvalidParameter(InvalidParameter("Invalid parameter(s): type")))
	assert.False(t, IsInvalidParameter(NotFound("", "")))
}

func TestError_Message(t *testing.T) {
	err := Transport(errors.New("dial tcp: timeout"))
	assert.Equal(t, "remote TRANSPORT: dial tcp: timeout", err.Error())
	assert.True(t, IsTransport(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))

	nf := NotFound("rest_invalid_id", "Invalid ID.")
	assert.Equal(t, "remote NOT_FOUND (rest_invalid_id): Invalid ID.", nf.Error())
}
