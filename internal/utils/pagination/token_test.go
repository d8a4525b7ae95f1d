package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeIndexToken(t *testing.T) {
	token := EncodeIndexToken("donations", 3, 50)
	assert.NotEmpty(t, token)

	next, err := DecodeIndexToken(token, "donations", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(50), next)
}

func TestDecodeIndexTokenErrors(t *testing.T) {
	token := EncodeIndexToken("donations", 3, 50)

	_, err := DecodeIndexToken(token, "expenses", 3)
	assert.ErrorContains(t, err, "not expenses")

	_, err = DecodeIndexToken(token, "donations", 4)
	assert.ErrorContains(t, err, "project 4")

	_, err = DecodeIndexToken("this is not base64!", "donations", 3)
	assert.ErrorContains(t, err, "base64 decode")

	_, err = DecodeIndexToken(EncodeMultiFieldToken("donations", "3"), "donations", 3)
	assert.ErrorContains(t, err, "field count")

	_, err = DecodeIndexToken(EncodeMultiFieldToken("donations", "3", "-1"), "donations", 3)
	assert.Error(t, err)
}

func TestNextIndexToken(t *testing.T) {
	assert.Nil(t, NextIndexToken("expenses", 1, 0, 10, 10))
	assert.Nil(t, NextIndexToken("expenses", 1, 20, 0, 10))

	token := NextIndexToken("expenses", 1, 0, 10, 11)
	require.NotNil(t, token)
	next, err := DecodeIndexToken(*token, "expenses", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), next)
}

func TestMultiFieldToken(t *testing.T) {
	fields, err := DecodeMultiFieldToken(EncodeMultiFieldToken("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fields)
}
