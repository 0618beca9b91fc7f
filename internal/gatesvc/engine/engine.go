package engine

import (
	"github.com/galargov/ravkav-services/internal/gatesvc/card"
	"github.com/galargov/ravkav-services/internal/gatesvc/codec"
	log "github.com/sirupsen/logrus"
)

// Status classifies a transaction by the phase that ended it.
type Status int

const (
	Success Status = iota
	AuthFailed
	WriteFailed
	ReadFailed
)

// Outcome is the result of one card transaction. Balance is only meaningful
// on Success; on failure Err carries the transport error for the phase.
type Outcome struct {
	Status  Status
	Balance int32
	Err     error
}

type Engine struct {
	budgetBlock uint8
	key         card.Key
}

func New(budgetBlock uint8, key card.Key) *Engine {
	return &Engine{budgetBlock: budgetBlock, key: key}
}

// Run performs one authenticate, write, read-back cycle against the budget
// block. The balance written is the caller's current (pre-debit) balance;
// the debit itself is applied by the decision layer and reaches the card on
// the next presentation, matching the deployed controllers. The session is
// always halted before Run returns, success or not.
func (e *Engine) Run(sess card.Session, balance int32) Outcome {
	defer func() {
		if err := sess.Halt(); err != nil {
			log.Errorf("Error [Engine.Run] halt: %s", err)
		}
	}()

	err := sess.Authenticate(e.budgetBlock, e.key)
	if err != nil {
		log.Errorf("Error [Engine.Run] authenticate failed: %s", card.Status(err))
		return Outcome{Status: AuthFailed, Err: err}
	}

	// A negative cached balance means we have nothing trustworthy to
	// persist; skip straight to reading what the card holds.
	if balance >= 0 {
		err = sess.WriteBlock(e.budgetBlock, codec.Encode(balance))
		if err != nil {
			log.Errorf("Error [Engine.Run] write failed: %s", card.Status(err))
			return Outcome{Status: WriteFailed, Err: err}
		}
	}

	data, err := sess.ReadBlock(e.budgetBlock)
	if err != nil {
		log.Errorf("Error [Engine.Run] read failed: %s", card.Status(err))
		return Outcome{Status: ReadFailed, Err: err}
	}

	newBalance, err := codec.Decode(data)
	if err != nil {
		log.Errorf("Error [Engine.Run] decode failed: %s", err)
		return Outcome{Status: ReadFailed, Err: err}
	}

	return Outcome{Status: Success, Balance: newBalance}
}
