package service

import (
	"context"
	"testing"
	"time"

	"github.com/galargov/ravkav-services/internal/comm"
	"github.com/galargov/ravkav-services/internal/gatesvc/card"
	"github.com/galargov/ravkav-services/internal/gatesvc/codec"
	"github.com/galargov/ravkav-services/internal/gatesvc/decision"
	"github.com/galargov/ravkav-services/internal/gatesvc/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	myUID    = card.UID{0xDE, 0xAD, 0xBE, 0xEF}
	otherUID = card.UID{0x01, 0x02, 0x03, 0x04}
)

type fakeSession struct {
	uid     card.UID
	block   []byte
	authErr error
	halted  bool
}

func (f *fakeSession) UID() card.UID { return f.uid }

func (f *fakeSession) Authenticate(block uint8, key card.Key) error {
	return f.authErr
}

func (f *fakeSession) WriteBlock(block uint8, data []byte) error {
	f.block = append([]byte(nil), data...)
	return nil
}

func (f *fakeSession) ReadBlock(block uint8) ([]byte, error) {
	return f.block, nil
}

func (f *fakeSession) Halt() error {
	f.halted = true
	return nil
}

type recordingSink struct {
	events []comm.DecisionData
}

func (r *recordingSink) Dispatch(ev comm.DecisionData) {
	r.events = append(r.events, ev)
}

type idleReader struct{}

func (idleReader) Poll(ctx context.Context) (card.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, card.ErrNoCard
}

func (idleReader) Close() error { return nil }

func newGate(firstBalance int32, sink *recordingSink) *GateService {
	eng := engine.New(14, card.DefaultKey)
	machine := decision.NewMachine(myUID, 10)
	return NewGateService(idleReader{}, eng, machine, firstBalance, sink)
}

func TestPresentationGrant(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	gate := newGate(100, sink)

	sess := &fakeSession{uid: myUID, block: codec.Encode(0)}
	gate.HandlePresentation(sess)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "grant", ev.Decision)
	assert.Equal(t, int32(90), ev.Balance)
	assert.Equal(t, myUID.String(), ev.UID)
	assert.NotEmpty(t, ev.TxnId)

	assert.Equal(t, int32(90), gate.Balance())
	assert.True(t, sess.halted)

	// the card still holds the pre-debit balance until the next presentation
	onCard, err := codec.Decode(sess.block)
	require.NoError(t, err)
	assert.Equal(t, int32(100), onCard)

	snap := gate.Snapshot()
	assert.Equal(t, "awaiting-card", snap.State)
	assert.Equal(t, "grant", snap.LastDecision)
}

func TestPresentationInsufficientBalance(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	gate := newGate(0, sink)

	sess := &fakeSession{uid: myUID, block: codec.Encode(0)}
	gate.HandlePresentation(sess)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "deny-balance", sink.events[0].Decision)
	assert.Equal(t, int32(0), sink.events[0].Balance)
	assert.Equal(t, int32(0), gate.Balance())
}

func TestPresentationUnknownIdentity(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	gate := newGate(100, sink)

	sess := &fakeSession{uid: otherUID, block: codec.Encode(33)}
	gate.HandlePresentation(sess)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "deny-unknown", sink.events[0].Decision)

	// cached balance untouched by a stranger's card
	assert.Equal(t, int32(100), gate.Balance())
}

func TestTransportFailureIsLogOnly(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	gate := newGate(100, sink)

	sess := &fakeSession{
		uid:     myUID,
		block:   codec.Encode(100),
		authErr: &card.AuthError{Status: card.StatusTimeout},
	}
	gate.HandlePresentation(sess)

	assert.Empty(t, sink.events, "transport failures never reach the sink")
	assert.Equal(t, int32(100), gate.Balance())
	assert.True(t, sess.halted)
	assert.Equal(t, "awaiting-card", gate.Snapshot().State)
}

func TestConsecutivePresentationsDebitEachTime(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	gate := newGate(100, sink)

	sess := &fakeSession{uid: myUID, block: codec.Encode(0)}
	for i := 0; i < 3; i++ {
		gate.HandlePresentation(sess)
	}

	require.Len(t, sink.events, 3)
	assert.Equal(t, int32(70), gate.Balance())

	// on-card balance lags the cached one by one presentation
	onCard, err := codec.Decode(sess.block)
	require.NoError(t, err)
	assert.Equal(t, int32(80), onCard)
}

func TestCacheTakesReadBackValue(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}

	// a grant from a balance below the entry cost leaves the cache
	// negative; the next read-back must replace it, not be ignored
	gate := newGate(-5, sink)

	sess := &fakeSession{uid: myUID, block: codec.Encode(0)}
	gate.HandlePresentation(sess)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "deny-balance", sink.events[0].Decision)
	assert.Equal(t, int32(0), gate.Balance(), "cache follows the card, not the stale negative value")
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	gate := newGate(100, &recordingSink{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gate.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
