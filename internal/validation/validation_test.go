package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Method   string  `validate:"required,payment_method"`
	Status   string  `validate:"omitempty,payment_status"`
	Category *string `validate:"omitempty,service_category"`
	Gender   string  `validate:"omitempty,gender"`
	Role     string  `validate:"omitempty,user_role"`
	Level    string  `validate:"omitempty,membership_level"`
}

func TestDomainTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	hair := "hair"
	assert.NoError(t, v.Struct(sample{
		Method:   "mobile_money",
		Status:   "refunded",
		Category: &hair,
		Gender:   "prefer not to say",
		Role:     "staff",
		Level:    "platinum",
	}))
	assert.NoError(t, v.Struct(sample{Method: "cash"}))

	bad := "plumbing"
	cases := []sample{
		{Method: "cheque"},
		{Method: "cash", Status: "paid"},
		{Method: "cash", Category: &bad},
		{Method: "cash", Gender: "unknown"},
		{Method: "cash", Role: "owner"},
		{Method: "cash", Level: "bronze"},
	}
	for _, c := range cases {
		assert.Error(t, v.Struct(c), "%+v", c)
	}
}

func TestRegisterOnGinEngine(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}
