package coordinator

import "strings"

// SlotCount is the number of hash slots in a cluster.
const SlotCount = 16384

// crc16 implements CRC16-CCITT (XMODEM) as used for key slot hashing.
func crc16(data string) uint16 {
	var crc uint16
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// KeySlot returns the cluster hash slot of key. When the key contains a
// non-empty {hash tag} only the tag is hashed.
func KeySlot(key string) int {
	if start := strings.IndexByte(key, '{'); start >= 0 {
		if end := strings.IndexByte(key[start+1:], '}'); end > 0 {
			key = key[start+1 : start+1+end]
		}
	}
	return int(crc16(key) % SlotCount)
}
