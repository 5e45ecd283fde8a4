package protocol

import "github.com/snksoft/crc"

// mcrf4xxParams is the CRC-16/MCRF4XX parameter set (poly 0x1021, init
// 0xFFFF, reflected in and out, no final xor) — the reflected CCITT
// variant Klipper's wire protocol uses for its message trailer.
var mcrf4xxParams = &crc.Parameters{
	Width:      16,
	Polynomial: 0x1021,
	Init:       0xFFFF,
	ReflectIn:  true,
	ReflectOut: true,
	FinalXor:   0x0000,
}

var crc16Table = crc.NewTable(mcrf4xxParams)

// CRC16 calculates the CRC16 checksum for Klipper protocol messages.
func CRC16(data []byte) uint16 {
	return uint16(crc.CalculateCRC(crc16Table, data))
}
