// Command cuberecv brings up a cube from a config file and blocks waiting
// for one message on a local port, printing it and exiting. Modeled on
// gocanopen's cmd/sdo_client one-shot style.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/node"

	_ "github.com/jordanjohnson-usu/cuberadio/pkg/trx/virtual"
)

func main() {
	log.SetLevel(log.InfoLevel)

	configPath := flag.String("c", "", "cube configuration .ini path")
	localPort := flag.Int("on", 0, "local application port to receive on")
	timeoutMs := flag.Int("timeout", 5000, "receive timeout in milliseconds")
	flag.Parse()

	if *configPath == "" || *localPort == 0 {
		fmt.Println("usage: cuberecv -c config.ini -on PORT [-timeout MS]")
		os.Exit(1)
	}

	cfg, err := node.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	cfg.Port = uint8(*localPort)

	cube, err := node.New(cfg, clock.Real{})
	if err != nil {
		log.WithError(err).Fatal("failed to bring up cube")
	}

	message, sourcePort, err := cube.Receive(time.Duration(*timeoutMs) * time.Millisecond)
	if err != nil {
		log.WithError(err).Fatal("receive failed")
	}
	fmt.Printf("from port %d: %s\n", sourcePort, string(message))
}
