package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUsername(t *testing.T) {
	tests := []struct {
		raw  string
		want Username
		err  error
	}{
		{"alice", "alice", nil},
		{"  bob_the-2nd ", "bob_the-2nd", nil},
		{"", "", ErrUsernameEmpty},
		{"   ", "", ErrUsernameEmpty},
		{"al", "", ErrUsernameTooShort},
		{strings.Repeat("a", 21), "", ErrUsernameTooLong},
		{"ali ce", "", ErrUsernameInvalid},
		{"élan", "élan", nil},
		{"日本語", "日本語", nil},
		{"日本", "", ErrUsernameTooShort},
		{strings.Repeat("é", 20), Username(strings.Repeat("é", 20)), nil},
		{"___", "", ErrUsernameInvalid},
		{"ab!", "", ErrUsernameInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseUsername(tt.raw)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateBody(t *testing.T) {
	assert.NoError(t, ValidateBody("hi", 500))
	assert.NoError(t, ValidateBody(strings.Repeat("x", 500), 500))

	err := ValidateBody(" \n", 500)
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Equal(t, "message cannot be empty", Reason(err))

	err = ValidateBody(strings.Repeat("x", 501), 500)
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Equal(t, "message must be less than 500 characters", Reason(err))
}

func TestReason_SessionErrorsAndPassthrough(t *testing.T) {
	err := fmt.Errorf("room ABCD: %w", ErrRoomNotFound)
	assert.Equal(t, "room does not exist", Reason(err))
	assert.Equal(t, ErrDuplicateSession.Error(), Reason(fmt.Errorf("join: %w", ErrDuplicateSession)))
	assert.Equal(t, "message cannot be empty", Reason(fmt.Errorf("send: %w", ValidateBody("", 10))))
	assert.Equal(t, "boom", Reason(errors.New("boom")))
}
