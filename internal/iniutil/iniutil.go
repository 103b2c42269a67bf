// Package iniutil holds the small parsing helpers shared by the INI-backed
// configuration loaders in pkg/netlayer and pkg/addr, so both accept the
// same "decimal or 0x-prefixed hex byte" syntax for addresses and ports.
package iniutil

import "strconv"

// ParseByteAddr parses a one-byte address/port value written as decimal
// ("10") or 0x-prefixed hex ("0x0A") in a config file.
func ParseByteAddr(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// ParseUint32Addr parses a 4-byte data-link address the same way.
func ParseUint32Addr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
