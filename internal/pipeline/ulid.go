package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// ULID generator for job ids: 26 Crockford Base32 characters with a
// 48-bit millisecond timestamp prefix, monotonic within a process.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	rand.Read(b[6:])
	// Sequence counter in bytes 6-7 keeps ids unique within one ms.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeCrockford(b)
}

// encodeCrockford maps 128 bits onto 26 base32 characters. The first
// character carries only the top 3 bits, so 26*5 = 130 bits cover the
// input exactly.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	bits := 128 - 3
	out[0] = crockford[b[0]>>5]
	for i := 1; i < 26; i++ {
		bits -= 5
		idx := 0
		for j := 0; j < 5; j++ {
			bit := bits + (4 - j)
			byteIdx := 15 - bit/8
			if b[byteIdx]>>(bit%8)&1 == 1 {
				idx |= 1 << (4 - j)
			}
		}
		out[i] = crockford[idx]
	}
	return string(out[:])
}
