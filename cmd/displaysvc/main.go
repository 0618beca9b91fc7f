package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	config "github.com/galargov/ravkav-services/configs"
	"github.com/galargov/ravkav-services/internal/displaysvc/broker"
	"github.com/galargov/ravkav-services/internal/displaysvc/render"
	gatebroker "github.com/galargov/ravkav-services/internal/gatesvc/broker"
	nats "github.com/galargov/ravkav-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "display"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	renderer := render.NewRenderer(render.LogDisplay{}, render.LogIndicator{})

	// subscribe to gate events
	b := broker.NewBroker(n.Conn, renderer)
	sub, err := b.Subscribe(gatebroker.DisplayTopic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	log.Infof("%s service consuming %s", SERVICE_NAME, gatebroker.DisplayTopic)

	// show the offline screen when a gate stops heartbeating
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.WatchLiveness(ctx, 5*time.Second)

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
