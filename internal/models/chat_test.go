package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, PairKey("u1", "u2"), PairKey("u2", "u1"))
	assert.NotEqual(t, PairKey("u1", "u2"), PairKey("u1", "u3"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
}

func TestChatParticipants(t *testing.T) {
	c := Chat{User1ID: "u1", User2ID: "u2"}
	assert.True(t, c.HasParticipant("u1"))
	assert.True(t, c.HasParticipant("u2"))
	assert.False(t, c.HasParticipant("u3"))

	assert.Equal(t, "u2", c.OtherParticipant("u1"))
	assert.Equal(t, "u1", c.OtherParticipant("u2"))
	assert.Empty(t, c.OtherParticipant("u3"))
}

func TestMessageStatusValid(t *testing.T) {
	assert.True(t, StatusDelivered.Valid())
	assert.True(t, StatusRead.Valid())
	assert.False(t, MessageStatus("archived").Valid())
	assert.False(t, MessageStatus("").Valid())
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Asha", LastName: "Rao"}
	assert.Equal(t, "Asha Rao", u.FullName())

	solo := User{FirstName: "Cher"}
	assert.Equal(t, "Cher", solo.FullName())
}
