package cursor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	key := Key("test-secret")
	pos := Position{CreatedAt: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), ID: "evt-123"}

	token := Encode(key, pos)
	got, err := Decode(key, token)
	require.NoError(t, err)
	assert.True(t, pos.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, pos.ID, got.ID)
}

func TestDecodeRejectsTamperedCursor(t *testing.T) {
	key := Key("test-secret")
	pos := Position{CreatedAt: time.Now(), ID: "evt-123"}
	token := Encode(key, pos)

	tampered := "A" + token[1:]
	if tampered == token {
		tampered = "B" + token[1:]
	}

	_, err := Decode(key, tampered)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	pos := Position{CreatedAt: time.Now(), ID: "evt-123"}
	token := Encode(Key("secret-a"), pos)

	_, err := Decode(Key("secret-b"), token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(Key("test-secret"), "not-a-valid-cursor")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsEmptyID(t *testing.T) {
	key := Key("test-secret")
	token := Encode(key, Position{CreatedAt: time.Now(), ID: ""})

	_, err := Decode(key, token)
	assert.ErrorIs(t, err, ErrInvalid)
}
