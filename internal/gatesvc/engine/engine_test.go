package engine

import (
	"testing"

	"github.com/galargov/ravkav-services/internal/gatesvc/card"
	"github.com/galargov/ravkav-services/internal/gatesvc/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records the order of transport calls and plays back a single
// in-memory budget block.
type fakeSession struct {
	uid   card.UID
	block []byte
	calls []string

	authErr  error
	writeErr error
	readErr  error
}

func newFakeSession(balance int32) *fakeSession {
	return &fakeSession{
		uid:   card.UID{0xDE, 0xAD, 0xBE, 0xEF},
		block: codec.Encode(balance),
	}
}

func (f *fakeSession) UID() card.UID { return f.uid }

func (f *fakeSession) Authenticate(block uint8, key card.Key) error {
	f.calls = append(f.calls, "authenticate")
	return f.authErr
}

func (f *fakeSession) WriteBlock(block uint8, data []byte) error {
	f.calls = append(f.calls, "write")
	if f.writeErr != nil {
		return f.writeErr
	}
	f.block = append([]byte(nil), data...)
	return nil
}

func (f *fakeSession) ReadBlock(block uint8) ([]byte, error) {
	f.calls = append(f.calls, "read")
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.block, nil
}

func (f *fakeSession) Halt() error {
	f.calls = append(f.calls, "halt")
	return nil
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(55)
	e := New(14, card.DefaultKey)

	out := e.Run(sess, 100)
	require.Equal(t, Success, out.Status)

	// the pre-debit balance is written back and read as authoritative
	assert.Equal(t, int32(100), out.Balance)
	assert.Equal(t, []string{"authenticate", "write", "read", "halt"}, sess.calls)
}

func TestRunSkipsWriteForNegativeBalance(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(70)
	e := New(14, card.DefaultKey)

	out := e.Run(sess, -3)
	require.Equal(t, Success, out.Status)

	// nothing trustworthy to persist, so the card's value wins
	assert.Equal(t, int32(70), out.Balance)
	assert.Equal(t, []string{"authenticate", "read", "halt"}, sess.calls)
}

func TestRunAuthFailure(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(100)
	sess.authErr = &card.AuthError{Status: card.StatusMifareNack}
	e := New(14, card.DefaultKey)

	out := e.Run(sess, 100)
	require.Equal(t, AuthFailed, out.Status)
	assert.ErrorIs(t, out.Err, sess.authErr)

	// write and read must never happen, halt always does
	assert.Equal(t, []string{"authenticate", "halt"}, sess.calls)
}

func TestRunWriteFailure(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(100)
	sess.writeErr = &card.WriteError{Status: card.StatusTimeout}
	e := New(14, card.DefaultKey)

	out := e.Run(sess, 100)
	require.Equal(t, WriteFailed, out.Status)
	assert.Equal(t, []string{"authenticate", "write", "halt"}, sess.calls)
}

func TestRunReadFailure(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(100)
	sess.readErr = &card.ReadError{Status: card.StatusCRCWrong}
	e := New(14, card.DefaultKey)

	out := e.Run(sess, 100)
	require.Equal(t, ReadFailed, out.Status)
	assert.Equal(t, []string{"authenticate", "write", "read", "halt"}, sess.calls)
}

func TestRunRejectsCorruptBlock(t *testing.T) {
	t.Parallel()

	sess := newFakeSession(100)
	sess.block = []byte{0x01, 0x02} // truncated read
	e := New(14, card.DefaultKey)

	out := e.Run(sess, -1) // skip the write so the corrupt block survives
	require.Equal(t, ReadFailed, out.Status)
	require.Error(t, out.Err)
}
