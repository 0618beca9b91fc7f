package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/galargov/ravkav-services/internal/gatesvc/service"
	"github.com/galargov/ravkav-services/internal/gatesvc/ws"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// SnapshotProvider is the read-only view handlers get of the gate. The
// status page must never block on a transaction in progress; the snapshot
// is taken under a lock the transaction path holds only briefly.
type SnapshotProvider interface {
	Snapshot() service.Snapshot
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	upgrader  websocket.Upgrader
	hub       *ws.Hub
	gate      SnapshotProvider
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(gate SnapshotProvider, hub *ws.Hub) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		hub:  hub,
		gate: gate,
	}
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// statusPage is the page the original controller served; kept as-is so
// bookmarked gates look unchanged.
const statusPage = `<!DOCTYPE html><html><head><meta name="viewport" content="width=device-width, initial-scale=1">` +
	`<link rel="icon" href="data:,">` +
	`<style>html { font-family: Helvetica; display: inline-block; margin: 0px auto; text-align: center;} </style></head>` +
	`<body><h1>GAL KAV</h1>` +
	`<p>Balance %d</p>` +
	`</body></html>`

func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.gate.Snapshot()

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, statusPage, snap.Balance)
}

func (h *Handler) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "gate status",
		Code:    200,
		Data:    h.gate.Snapshot(),
	}
	h.CreateResponse(w, rsp)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "gate service is running at port " + os.Getenv("GATE_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// HandleWebSocket attaches a browser to the live status feed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, conn)

	log.Infof("New WebSocket connection established: %s", socketId)

	go h.drainConnection(conn, socketId)
}

// drainConnection keeps the read side alive so close frames are noticed.
// Incoming payloads are discarded: the feed is one-way.
func (h *Handler) drainConnection(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("Closing WebSocket connection: %s", socketId)
		conn.Close()
		h.hub.RemoveConnection(socketId)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			} else {
				log.Infof("WebSocket connection closed normally for socket: %s", socketId)
			}
			return
		}
	}
}
