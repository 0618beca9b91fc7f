package broker

import (
	"encoding/json"
	"time"

	"github.com/galargov/ravkav-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// DisplayTopic is consumed by the display service.
const DisplayTopic = "display.service"

type Broker struct {
	Conn   *nats.Conn
	GateId string
}

func NewBroker(nc *nats.Conn, gateId string) *Broker {
	return &Broker{Conn: nc, GateId: gateId}
}

// Dispatch publishes one decision event per card presentation. It satisfies
// the gate service sink interface.
func (b *Broker) Dispatch(ev comm.DecisionData) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Error [Broker.Dispatch] unable to marshal decision %s %s", ev.TxnId, err)
		return
	}

	msg := &comm.GateMessage{
		Type:   "decision",
		Data:   data,
		GateId: b.GateId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(DisplayTopic, payload)
}

// PublishBalance refreshes the idle screen on the display service.
func (b *Broker) PublishBalance(balance int32) {
	data, err := json.Marshal(comm.BalanceData{Balance: balance})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	msg := &comm.GateMessage{
		Type:   "balance",
		Data:   data,
		GateId: b.GateId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(DisplayTopic, payload)
}

// PublishHeartbeat lets the display service notice a dead gate.
func (b *Broker) PublishHeartbeat() {
	data, err := json.Marshal(comm.ServiceHeartbeat{ID: b.GateId, Timestamp: time.Now()})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	msg := &comm.GateMessage{
		Type:   "heartbeat",
		Data:   data,
		GateId: b.GateId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(DisplayTopic, payload)
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
