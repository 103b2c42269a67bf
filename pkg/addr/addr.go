// Package addr implements the address-resolution contract of spec.md
// §4.5: two pure, total, compiled-in tables — network address to
// data-link address, and port to network address. Ports are globally
// unique in this stack (spec.md §3 invariants), so the port-to-network
// pairing is well-defined.
package addr

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/jordanjohnson-usu/cuberadio/internal/iniutil"
	"github.com/jordanjohnson-usu/cuberadio/pkg/netlayer"
	"github.com/jordanjohnson-usu/cuberadio/pkg/trx"
)

// Table holds one node's address-resolution tables.
type Table struct {
	dlByNet   map[netlayer.Addr]trx.Addr
	netByPort map[uint8]netlayer.Addr
}

// New builds a Table from compiled-in maps.
func New(dlByNet map[netlayer.Addr]trx.Addr, netByPort map[uint8]netlayer.Addr) *Table {
	t := &Table{
		dlByNet:   make(map[netlayer.Addr]trx.Addr, len(dlByNet)),
		netByPort: make(map[uint8]netlayer.Addr, len(netByPort)),
	}
	for k, v := range dlByNet {
		t.dlByNet[k] = v
	}
	for k, v := range netByPort {
		t.netByPort[k] = v
	}
	return t
}

// ResolveDLAddr maps a network address to a data-link address
// (spec.md's resolve_dl_addr).
func (t *Table) ResolveDLAddr(net netlayer.Addr) (trx.Addr, bool) {
	v, ok := t.dlByNet[net]
	return v, ok
}

// ResolveNetAddr maps a port to a network address (spec.md's
// resolve_net_addr).
func (t *Table) ResolveNetAddr(port uint8) (netlayer.Addr, bool) {
	v, ok := t.netByPort[port]
	return v, ok
}

// LoadINI reads a Table from an INI file with an [addresses] section
// (network address = data-link address, in hex) and a [ports] section
// (port = network address):
//
//	[addresses]
//	0x0A = 0xCAFEF00D
//	0x0B = 0xCAFEF00E
//
//	[ports]
//	0x3C = 0x0A
//	0x0A = 0x0B
//
// Modeled on gocanopen's EDS parser (pkg/od/parser.go), which loads its
// per-node tables from the same ini.Load/iterate-sections shape.
func LoadINI(path string) (*Table, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("addr: load table: %w", err)
	}

	t := New(nil, nil)

	if section, err := file.GetSection("addresses"); err == nil {
		for _, key := range section.Keys() {
			netA, err := iniutil.ParseByteAddr(key.Name())
			if err != nil {
				return nil, fmt.Errorf("addr: address table network addr %q: %w", key.Name(), err)
			}
			dlA, err := iniutil.ParseUint32Addr(key.Value())
			if err != nil {
				return nil, fmt.Errorf("addr: address table dl addr %q: %w", key.Value(), err)
			}
			t.dlByNet[netlayer.Addr(netA)] = trx.Addr(dlA)
		}
	}

	if section, err := file.GetSection("ports"); err == nil {
		for _, key := range section.Keys() {
			port, err := iniutil.ParseByteAddr(key.Name())
			if err != nil {
				return nil, fmt.Errorf("addr: port table port %q: %w", key.Name(), err)
			}
			netA, err := iniutil.ParseByteAddr(key.Value())
			if err != nil {
				return nil, fmt.Errorf("addr: port table network addr %q: %w", key.Value(), err)
			}
			t.netByPort[port] = netlayer.Addr(netA)
		}
	}

	return t, nil
}
