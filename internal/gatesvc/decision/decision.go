// Package decision turns a card identity and a post-transaction balance
// into a grant or deny outcome.
package decision

import (
	"github.com/galargov/ravkav-services/internal/gatesvc/card"
)

type Kind int

const (
	Grant Kind = iota
	DenyInsufficientBalance
	DenyUnknownIdentity
)

func (k Kind) String() string {
	switch k {
	case Grant:
		return "grant"
	case DenyInsufficientBalance:
		return "deny-balance"
	case DenyUnknownIdentity:
		return "deny-unknown"
	default:
		return "unknown"
	}
}

// Decision carries the remaining balance after a Grant (entry cost already
// deducted) or the untouched balance for either denial.
type Decision struct {
	Kind    Kind
	Balance int32
}

type State int

const (
	AwaitingCard State = iota
	Evaluating
	Granted
	DeniedNoBalance
	DeniedUnknown
)

func (s State) String() string {
	switch s {
	case AwaitingCard:
		return "awaiting-card"
	case Evaluating:
		return "evaluating"
	case Granted:
		return "granted"
	case DeniedNoBalance:
		return "denied-no-balance"
	case DeniedUnknown:
		return "denied-unknown"
	default:
		return "unknown"
	}
}

// Machine evaluates one presentation at a time. It recognizes exactly one
// authorized identity; unknown cards are never debited.
type Machine struct {
	authorized card.UID
	entryCost  int32
	state      State
}

func NewMachine(authorized card.UID, entryCost int32) *Machine {
	return &Machine{authorized: authorized, entryCost: entryCost, state: AwaitingCard}
}

func (m *Machine) State() State {
	return m.state
}

// Evaluate classifies a presentation and moves the machine into the matching
// terminal state. The caller must follow up with Dispatched once the
// decision has been handed to the presentation sink.
func (m *Machine) Evaluate(uid card.UID, balance int32) Decision {
	m.state = Evaluating

	switch {
	case uid.Equal(m.authorized) && balance > 0:
		m.state = Granted
		return Decision{Kind: Grant, Balance: balance - m.entryCost}
	case uid.Equal(m.authorized):
		m.state = DeniedNoBalance
		return Decision{Kind: DenyInsufficientBalance, Balance: balance}
	default:
		m.state = DeniedUnknown
		return Decision{Kind: DenyUnknownIdentity, Balance: balance}
	}
}

// Dispatched returns the machine to AwaitingCard. The transition is
// unconditional; there is no retry or hold state.
func (m *Machine) Dispatched() {
	m.state = AwaitingCard
}
