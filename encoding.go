package termgfx

import (
	"encoding/base64"
	"sync"
)

// kittyChunkSize is the maximum number of raw bytes base64-encoded into
// a single Kitty graphics APC sequence, per §4.6.
const kittyChunkSize = 4000

// base64EncoderPool reuses encode buffers across chunks so a multi-
// megabyte transmission doesn't allocate one growing buffer per chunk.
var base64EncoderPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, kittyChunkSize*2)
		return &buf
	},
}

// base64Encode encodes src using a pooled buffer, shared by the Kitty
// and iTerm2 encoders' chunked transmission paths.
func base64Encode(src []byte) string {
	bufPtr := base64EncoderPool.Get().(*[]byte)
	defer base64EncoderPool.Put(bufPtr)

	encodedLen := base64.StdEncoding.EncodedLen(len(src))
	if cap(*bufPtr) < encodedLen {
		*bufPtr = make([]byte, encodedLen)
	} else {
		*bufPtr = (*bufPtr)[:encodedLen]
	}

	base64.StdEncoding.Encode(*bufPtr, src)
	return string(*bufPtr)
}

// chunkedBase64Encode splits data into chunkSize-byte pieces and base64
// encodes each independently.
func chunkedBase64Encode(data []byte, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = len(data)
	}
	numChunks := (len(data) + chunkSize - 1) / chunkSize
	results := make([]string, 0, numChunks)
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		results = append(results, base64Encode(data[i:end]))
	}
	return results
}
