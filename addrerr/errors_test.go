package addrerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Kind: InvalidEncoding, Message: "bad character"},
			want: "bad character",
		},
		{
			name: "with op",
			err:  New(InvalidChecksum, "bech32.Decode", "checksum mismatch"),
			want: "bech32.Decode: checksum mismatch",
		},
		{
			name: "details are sorted",
			err: &Error{
				Kind:    UnsupportedLength,
				Message: "too long",
				Details: map[string]string{"max": "520", "len": "600"},
			},
			want: "too long (len: 600) (max: 520)",
		},
		{
			name: "with cause",
			err:  Wrap(InvalidEncoding, "base58check.Decode", io.ErrUnexpectedEOF, "short input"),
			want: "base58check.Decode: short input: unexpected EOF",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_IsMatchesByKind(t *testing.T) {
	err := New(InvalidChecksum, "base58check.DecodeCheck", "checksum mismatch")

	assert.ErrorIs(t, err, ErrInvalidChecksum)
	assert.NotErrorIs(t, err, ErrInvalidEncoding)

	wrapped := fmt.Errorf("decoding address: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidChecksum)
	assert.Equal(t, InvalidChecksum, KindOf(wrapped))
}

func TestError_Unwrap(t *testing.T) {
	err := Wrap(InvalidEncoding, "op", io.EOF, "failed")
	require.ErrorIs(t, err, io.EOF)
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(New(UnknownNetwork, "address.P2PKH", "unknown network"), map[string]string{"network": "7"})
	assert.Equal(t, "address.P2PKH: unknown network (network: 7)", err.Error())
	assert.ErrorIs(t, err, ErrUnknownNetwork)

	plain := errors.New("plain")
	assert.Equal(t, plain, WithDetails(plain, map[string]string{"a": "b"}))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(ErrInvalidEncoding))
	assert.True(t, IsInputError(ErrInvalidChecksum))
	assert.True(t, IsInputError(ErrInvalidProgramLength))
	assert.True(t, IsInputError(ErrInvalidScalar))
	assert.False(t, IsInputError(ErrUnknownNetwork))
	assert.False(t, IsInputError(ErrUnsupportedLength))
	assert.False(t, IsInputError(errors.New("plain")))
}
