package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/galargov/ravkav-services/internal/comm"
	"github.com/galargov/ravkav-services/internal/gatesvc/card"
	"github.com/galargov/ravkav-services/internal/gatesvc/decision"
	"github.com/galargov/ravkav-services/internal/gatesvc/engine"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Sink consumes exactly one decision event per card presentation. The NATS
// broker and the websocket hub both implement it.
type Sink interface {
	Dispatch(ev comm.DecisionData)
}

// Snapshot is the synchronized view the status endpoints read. The cached
// balance is only a between-presentations convenience; the card holds the
// authoritative value.
type Snapshot struct {
	Balance      int32  `json:"balance"`
	State        string `json:"state"`
	LastDecision string `json:"last_decision"`
	LastUID      string `json:"last_uid"`
}

type GateService struct {
	reader  card.Reader
	engine  *engine.Engine
	machine *decision.Machine
	sinks   []Sink

	pollInterval time.Duration

	mu           sync.RWMutex
	balance      int32
	state        decision.State
	lastDecision string
	lastUID      string
}

func NewGateService(reader card.Reader, eng *engine.Engine, machine *decision.Machine,
	firstBalance int32, sinks ...Sink) *GateService {
	return &GateService{
		reader:       reader,
		engine:       eng,
		machine:      machine,
		sinks:        sinks,
		pollInterval: 50 * time.Millisecond,
		balance:      firstBalance,
	}
}

// Run polls for card presentations until ctx is done. Presentations are
// strictly serialized: the next poll does not happen before the current
// card session has been halted.
func (s *GateService) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sess, err := s.reader.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if !errors.Is(err, card.ErrNoCard) {
				log.Errorf("Error [GateService.Run] poll: %s", err)
			}
			time.Sleep(s.pollInterval)
			continue
		}

		s.HandlePresentation(sess)
	}
}

// HandlePresentation runs one card through the transaction engine and the
// decision machine and dispatches the result.
func (s *GateService) HandlePresentation(sess card.Session) {
	uid := sess.UID()
	log.Infof("card presented UID: %s", uid)

	outcome := s.engine.Run(sess, s.Balance())
	if outcome.Status != engine.Success {
		// Transport failures are terminal for this presentation and are
		// visible through the log only. The cached balance is untouched
		// and the user recovers by re-presenting the card.
		return
	}

	d := s.machine.Evaluate(uid, outcome.Balance)

	s.mu.Lock()
	// the read-back value is authoritative whatever the decision; a grant
	// then layers the entry-cost debit on top of it
	s.balance = outcome.Balance
	if d.Kind == decision.Grant {
		s.balance = d.Balance
	}
	s.state = s.machine.State()
	s.lastDecision = d.Kind.String()
	s.lastUID = uid.String()
	s.mu.Unlock()

	ev := comm.DecisionData{
		TxnId:    uuid.New().String(),
		UID:      uid.String(),
		Decision: d.Kind.String(),
		Balance:  d.Balance,
	}

	for _, sink := range s.sinks {
		sink.Dispatch(ev)
	}

	s.machine.Dispatched()

	s.mu.Lock()
	s.state = s.machine.State()
	s.mu.Unlock()
}

func (s *GateService) Balance() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

func (s *GateService) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Balance:      s.balance,
		State:        s.state.String(),
		LastDecision: s.lastDecision,
		LastUID:      s.lastUID,
	}
}
