package render

import (
	"fmt"
	"time"

	"github.com/galargov/ravkav-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

// Display is the gate's screen. The default implementation writes the
// layouts to the service log; a TFT-backed one satisfies the same interface.
type Display interface {
	Show(lines ...string)
}

type LogDisplay struct{}

func (LogDisplay) Show(lines ...string) {
	for _, l := range lines {
		log.Infof("[display] %s", l)
	}
}

// Indicator is the gate-closed lamp.
type Indicator interface {
	On()
	Off()
}

type LogIndicator struct{}

func (LogIndicator) On()  { log.Info("[indicator] on") }
func (LogIndicator) Off() { log.Info("[indicator] off") }

// Renderer maps decision events onto the three fixed screen layouts.
type Renderer struct {
	display   Display
	indicator Indicator
	sleep     func(time.Duration)
}

func NewRenderer(d Display, i Indicator) *Renderer {
	return &Renderer{display: d, indicator: i, sleep: time.Sleep}
}

// Idle draws the between-presentations screen.
func (r *Renderer) Idle(balance int32) {
	r.display.Show("GAL KAV <3", fmt.Sprintf("Balance: %d", balance))
}

// Offline replaces the idle screen when the gate stops heartbeating.
func (r *Renderer) Offline() {
	r.display.Show("GAL KAV <3", "Gate offline")
}

// Decision draws the layout for one presentation outcome. Both denial
// layouts pulse the indicator once.
func (r *Renderer) Decision(ev comm.DecisionData) {
	switch ev.Decision {
	case "grant":
		r.display.Show("GAL KAV:", fmt.Sprintf("Balance: %d", ev.Balance), "Entrance OK :-)")
	case "deny-balance":
		r.display.Show("GAL KAV:", "Balance < 0", "Entrance not OK :-(")
		r.pulse()
	case "deny-unknown":
		r.display.Show("GAL KAV:", "Unknown UID", "Entrance not OK :-(")
		r.pulse()
	default:
		log.Warnf("unknown decision kind: %s", ev.Decision)
	}
}

// pulse flashes the lamp once, 1 second on then 1 second off.
func (r *Renderer) pulse() {
	r.indicator.On()
	r.sleep(1 * time.Second)
	r.indicator.Off()
	r.sleep(1 * time.Second)
}
