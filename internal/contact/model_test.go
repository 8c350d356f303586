package contact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValid(t *testing.T) {
	payload := validPayload()
	payload["unknownField"] = "dropped"

	sub, err := Decode(mustJSON(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "Ada", sub.FirstName)
	assert.Equal(t, "12345", sub.PostalCode)
	assert.Equal(t, "Ada Lovelace", sub.FullName())
}

func TestDecodeOptionalFieldsMayBeAbsent(t *testing.T) {
	payload := validPayload()
	delete(payload, "postalCode")
	delete(payload, "patientLiaison")

	sub, err := Decode(mustJSON(t, payload))
	require.NoError(t, err)
	assert.Empty(t, sub.PostalCode)
}

func TestDecodeMissingEmail(t *testing.T) {
	payload := validPayload()
	delete(payload, "email")

	_, err := Decode(mustJSON(t, payload))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []string{"Required"}, shapeErr.Issues.FieldErrors["email"])
	assert.Len(t, shapeErr.Issues.FieldErrors, 1)
}

func TestDecodeInvalidEmail(t *testing.T) {
	payload := validPayload()
	payload["email"] = "not-an-email"

	_, err := Decode(mustJSON(t, payload))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []string{"Invalid email"}, shapeErr.Issues.FieldErrors["email"])
}

func TestDecodeEnumeratesEveryViolation(t *testing.T) {
	_, err := Decode([]byte(`{"firstName":"Ada"}`))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	for _, field := range []string{"lastName", "dateOfBirth", "email", "countryCode", "phone", "appointmentDate", "appointmentTime", "message"} {
		assert.Contains(t, shapeErr.Issues.FieldErrors, field)
	}
	assert.NotContains(t, shapeErr.Issues.FieldErrors, "firstName")
	assert.NotContains(t, shapeErr.Issues.FieldErrors, "postalCode")
}

func TestDecodeWrongType(t *testing.T) {
	payload := validPayload()
	payload["phone"] = 7805550100

	_, err := Decode(mustJSON(t, payload))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	require.Len(t, shapeErr.Issues.FieldErrors["phone"], 1)
	assert.Equal(t, "Expected string, received number", shapeErr.Issues.FieldErrors["phone"][0])
}

func TestDecodeFormErrors(t *testing.T) {
	tests := map[string]string{
		"malformed": `{"firstName":`,
		"array":     `[]`,
		"empty":     ``,
		"trailing":  `{"firstName":"Ada"} {"x":1}`,
		"null":      `null`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr))
			assert.Len(t, shapeErr.Issues.FormErrors, 1)
			assert.Contains(t, shapeErr.Error(), "invalid payload")
		})
	}
}

func TestDecodeRejectsNullAndTrailingData(t *testing.T) {
	_, err := Decode([]byte(" null \n"))
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []string{"Expected object, received null"}, shapeErr.Issues.FormErrors)

	body := append(mustJSON(t, validPayload()), []byte(`garbage`)...)
	_, err = Decode(body)
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []string{"Unexpected data after JSON object"}, shapeErr.Issues.FormErrors)

	// Trailing whitespace is not data.
	body = append(mustJSON(t, validPayload()), []byte("\n\t ")...)
	_, err = Decode(body)
	require.NoError(t, err)
}
