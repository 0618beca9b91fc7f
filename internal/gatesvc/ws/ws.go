package ws

import (
	"encoding/json"
	"sync"

	"github.com/galargov/ravkav-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub pushes gate events to browsers watching the status page. It is a
// read-only feed; nothing a client sends can reach the transaction path.
type Hub struct {
	connMap sync.Map   // socketId -> *websocket.Conn
	writeMu sync.Mutex // gorilla/websocket allows one writer per conn
	GateId  string
}

func NewHub(gateId string) *Hub {
	return &Hub{GateId: gateId}
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
}

func (h *Hub) RemoveConnection(socketId string) {
	h.connMap.Delete(socketId)
}

// Dispatch broadcasts one decision event to every connected client. It
// satisfies the gate service sink interface.
func (h *Hub) Dispatch(ev comm.DecisionData) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Error [Hub.Dispatch] unable to marshal decision %s %s", ev.TxnId, err)
		return
	}

	h.broadcast(&comm.GateMessage{
		Type:   "decision",
		Data:   data,
		GateId: h.GateId,
	})
}

// BroadcastBalance refreshes the balance shown on open status pages.
func (h *Hub) BroadcastBalance(balance int32) {
	data, err := json.Marshal(comm.BalanceData{Balance: balance})
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	h.broadcast(&comm.GateMessage{
		Type:   "balance",
		Data:   data,
		GateId: h.GateId,
	})
}

func (h *Hub) broadcast(msg *comm.GateMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	// decision dispatch and the balance ticker broadcast from different
	// goroutines; writes to a shared conn must not interleave
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.connMap.Range(func(key, value interface{}) bool {
		conn := value.(*websocket.Conn)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warnf("dropping websocket client %s: %s", key.(string), err)
			conn.Close()
			h.connMap.Delete(key)
		}
		return true
	})
}
