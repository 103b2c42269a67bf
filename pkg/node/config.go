package node

import (
	"fmt"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/jordanjohnson-usu/cuberadio/internal/iniutil"
	"github.com/jordanjohnson-usu/cuberadio/pkg/addr"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
)

// Config is everything one cube needs to come up: its own identity, which
// TRX backend to open, and the two compiled-in tables spec.md §4.5 and §6
// require. Grounded on gocanopen's own node bring-up, which likewise reads
// an identity (node ID) and an object dictionary from one file on disk
// (od_parser.go's ParseEDSFromFile).
type Config struct {
	Port         uint8
	NetAddr      netlayer.Addr
	TRXBackend   string
	TRXChannel   string
	RoutingTable *netlayer.RoutingTable
	AddrTable    *addr.Table
}

// LoadConfig reads a cube's configuration from an INI file:
//
//	[node]
//	port = 0x3C
//	net_addr = 0x0A
//	trx_backend = virtual
//	trx_channel = localhost:9000
//	routes = routes.ini
//	addresses = addresses.ini
//
// routes and addresses are paths relative to the directory containing path,
// in turn parsed as described in netlayer.LoadRoutingTableINI and
// addr.LoadINI.
func LoadConfig(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("node: load config: %w", err)
	}

	section, err := file.GetSection("node")
	if err != nil {
		return nil, fmt.Errorf("node: config missing [node] section: %w", err)
	}

	port, err := iniutil.ParseByteAddr(section.Key("port").String())
	if err != nil {
		return nil, fmt.Errorf("node: config port: %w", err)
	}
	netAddrRaw, err := iniutil.ParseByteAddr(section.Key("net_addr").String())
	if err != nil {
		return nil, fmt.Errorf("node: config net_addr: %w", err)
	}

	backend := section.Key("trx_backend").String()
	if backend == "" {
		return nil, fmt.Errorf("node: config missing trx_backend")
	}
	channel := section.Key("trx_channel").String()

	dir := filepath.Dir(path)

	routesPath := section.Key("routes").String()
	if routesPath == "" {
		return nil, fmt.Errorf("node: config missing routes")
	}
	routes, err := netlayer.LoadRoutingTableINI(filepath.Join(dir, routesPath))
	if err != nil {
		return nil, fmt.Errorf("node: config routes: %w", err)
	}

	addressesPath := section.Key("addresses").String()
	if addressesPath == "" {
		return nil, fmt.Errorf("node: config missing addresses")
	}
	addrTable, err := addr.LoadINI(filepath.Join(dir, addressesPath))
	if err != nil {
		return nil, fmt.Errorf("node: config addresses: %w", err)
	}

	return &Config{
		Port:         port,
		NetAddr:      netlayer.Addr(netAddrRaw),
		TRXBackend:   backend,
		TRXChannel:   channel,
		RoutingTable: routes,
		AddrTable:    addrTable,
	}, nil
}
