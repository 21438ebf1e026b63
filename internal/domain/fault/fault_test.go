package fault

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }
func (customErr) Kind() Kind    { return KindRule }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"not found", NotFound("order", int64(7)), KindNotFound},
		{"wrapped not found", errors.Wrap(NotFound("order", 7), "get order"), KindNotFound},
		{"rule", Rule("customer %q is inactive", "Pedro"), KindRule},
		{"conflict", Conflict("email already registered"), KindConflict},
		{"validation", Invalid("email", "must be a valid address", "x@"), KindValidation},
		{"custom kinded", errors.Wrap(customErr{}, "ctx"), KindRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNotFoundError_Message(t *testing.T) {
	assert.EqualError(t, NotFound("restaurant", int64(3)), "restaurant 3 not found")
}

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	require.NoError(t, v.Err())

	v.Add("name", "is required", "")
	v.Add("price", "must be greater than 0", "-1")
	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "invalid request: name: is required; price: must be greater than 0", err.Error())

	var ve *ValidationError
	require.ErrorAs(t, errors.Wrap(err, "create product"), &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "internal", Kind(42).String())
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"11999991111", true},
		{"(11) 3333-4444", true},
		{"+55 11 9999-1111", false},
		{"123456789", false},
		{"11-9999-111a", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestCheckLength(t *testing.T) {
	v := &ValidationError{}
	v.CheckLength("name", " a ", 2, 100)
	v.CheckLength("address", "Rua A, 123", 5, 200)

	require.Len(t, v.Fields, 1)
	assert.Equal(t, "name", v.Fields[0].Field)
	assert.Equal(t, "must be between 2 and 100 characters", v.Fields[0].Message)
}
