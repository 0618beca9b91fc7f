package broker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/galargov/ravkav-services/internal/comm"
	"github.com/galargov/ravkav-services/internal/displaysvc/render"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn     *nats.Conn
	Renderer *render.Renderer

	LastHeartbeatMap   sync.Map // gate id -> last heartbeat timestamp
	offlineMap         sync.Map // gate id -> already shown as offline
	heartbeatThreshold time.Duration
}

func NewBroker(conn *nats.Conn, renderer *render.Renderer) *Broker {
	return &Broker{
		Conn:               conn,
		Renderer:           renderer,
		heartbeatThreshold: time.Second * 15,
	}
}

// consume gate events
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessages receives events from the gate service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.GateMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "decision":
		ev := comm.DecisionData{}
		if err := json.Unmarshal(message.Data, &ev); err != nil {
			log.Errorf("Error decoding decision event: %s", err)
			return
		}
		log.Infof("decision %s for UID %s balance %d", ev.Decision, ev.UID, ev.Balance)
		b.Renderer.Decision(ev)
	case "balance":
		ev := comm.BalanceData{}
		if err := json.Unmarshal(message.Data, &ev); err != nil {
			log.Errorf("Error decoding balance event: %s", err)
			return
		}
		b.Renderer.Idle(ev.Balance)
	case "heartbeat":
		hb := comm.ServiceHeartbeat{}
		if err := json.Unmarshal(message.Data, &hb); err != nil {
			log.Errorf("Error decoding heartbeat: %s", err)
			return
		}
		b.LastHeartbeatMap.Store(hb.ID, hb.Timestamp)
	default:
		log.Error("Unknown message")
	}
}

// GateAlive reports whether the gate has heartbeated recently.
func (b *Broker) GateAlive(gateId string) bool {
	v, ok := b.LastHeartbeatMap.Load(gateId)
	if !ok {
		return false
	}
	return time.Since(v.(time.Time)) < b.heartbeatThreshold
}

// WatchLiveness shows the offline screen when a gate stops heartbeating.
// The next balance event repaints the idle screen on recovery.
func (b *Broker) WatchLiveness(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.checkLiveness()
		}
	}
}

func (b *Broker) checkLiveness() {
	b.LastHeartbeatMap.Range(func(key, value interface{}) bool {
		gateId := key.(string)
		if b.GateAlive(gateId) {
			b.offlineMap.Delete(gateId)
			return true
		}

		// render the offline screen once per outage, not every tick
		if _, shown := b.offlineMap.LoadOrStore(gateId, true); !shown {
			log.Warnf("gate %s stopped heartbeating", gateId)
			b.Renderer.Offline()
		}
		return true
	})
}
