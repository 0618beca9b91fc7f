package comm

import (
	"encoding/json"
	"time"
)

// GateMessage is the envelope every gate event travels in over NATS.
type GateMessage struct {
	Type   string          `json:"type"` // e.g. "decision", "balance"
	Data   json.RawMessage `json:"data"`
	GateId string          `json:"gateid"`
}

// DecisionData is published once per card presentation.
type DecisionData struct {
	TxnId    string `json:"txn_id"`
	UID      string `json:"uid"`
	Decision string `json:"decision"` // grant, deny-balance, deny-unknown
	Balance  int32  `json:"balance"`
}

// BalanceData refreshes the idle screen between presentations.
type BalanceData struct {
	Balance int32 `json:"balance"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}

type ServiceShutdown struct {
	ID string `json:"id"` // service id
}
