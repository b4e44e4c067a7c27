package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/transport"
)

func TestStruct_UsesJSONFieldNames(t *testing.T) {
	err := Struct(&transport.RegisterRequest{Username: "amy", Email: "not-an-email"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Tag
	}
	assert.Equal(t, "required", fields["password"])
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["firstName"])
	assert.Contains(t, err.Error(), "password is required")
}

func TestStruct_NestedItems(t *testing.T) {
	req := transport.CreateOrderRequest{
		Items:         []transport.OrderItemRequest{{ProductID: 1, Quantity: 0}},
		PaymentMethod: "mpesa",
	}
	err := Struct(&req)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))

	var names []string
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "items[0].quantity")
	assert.Contains(t, names, "shippingAddress")
}

func TestEcho_Valid(t *testing.T) {
	assert.NoError(t, Echo{}.Validate(&transport.CreateReviewRequest{Rating: 4}))
	assert.Error(t, Echo{}.Validate(&transport.CreateReviewRequest{Rating: 6}))
}
