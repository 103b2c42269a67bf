// Command cubenode runs one cube: it loads a node configuration, brings up
// its transceiver and stack, and serves an HTTP gateway over it. Modeled
// on gocanopen's cmd/canopen_http.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/jordanjohnson-usu/cuberadio/pkg/clock"
	gatewayhttp "github.com/jordanjohnson-usu/cuberadio/pkg/gateway/http"
	"github.com/jordanjohnson-usu/cuberadio/pkg/node"

	_ "github.com/jordanjohnson-usu/cuberadio/pkg/trx/virtual"
)

const defaultHTTPPort = 8090

func main() {
	log.SetLevel(log.DebugLevel)

	configPath := flag.String("c", "", "cube configuration .ini path")
	httpPort := flag.Int("p", defaultHTTPPort, "http gateway listen port")
	portFlag := flag.Int("port", 0, "application port this cube serves")
	flag.Parse()

	if *configPath == "" {
		fmt.Println("missing -c config path")
		os.Exit(1)
	}

	cfg, err := node.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	if *portFlag != 0 {
		cfg.Port = uint8(*portFlag)
	}

	cube, err := node.New(cfg, clock.Real{})
	if err != nil {
		log.WithError(err).Fatal("failed to bring up cube")
	}

	gw := gatewayhttp.NewGatewayServer(cube)
	log.Infof("serving cube %d on :%d", cfg.NetAddr, *httpPort)
	if err := gw.ListenAndServe(fmt.Sprintf(":%d", *httpPort)); err != nil {
		log.WithError(err).Fatal("gateway stopped")
	}
}
