// Command cubesend brings up a cube from a config file and sends one
// message to a destination port, then exits. Modeled on gocanopen's
// cmd/sdo_client, a short-lived one-shot client against a node.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	"github.com/jordanjohnson-usu/cuberadio/pkg/node"

	_ "github.com/jordanjohnson-usu/cuberadio/pkg/trx/virtual"
)

func main() {
	log.SetLevel(log.InfoLevel)

	configPath := flag.String("c", "", "cube configuration .ini path")
	localPort := flag.Int("from", 0, "local application port to send from")
	destPort := flag.Int("to", 0, "destination application port")
	message := flag.String("m", "", "message to send")
	flag.Parse()

	if *configPath == "" || *localPort == 0 || *destPort == 0 {
		fmt.Println("usage: cubesend -c config.ini -from PORT -to PORT -m MESSAGE")
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

	if err := cube.Send([]byte(*message), uint8(*destPort)); err != nil {
		log.WithError(err).Fatal("send failed")
	}
	log.Info("message delivered")
}
