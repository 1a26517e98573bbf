// Package pcm converts between normalized floating-point samples and the
// 16-bit little-endian signed PCM representation used on the wire, for both
// captured microphone audio and received agent audio.
package pcm

// Encode maps normalized samples in [-1, 1] to signed 16-bit PCM. Input is
// clamped first. Negative values scale by 32768 and non-negative values by
// 32767 so both extremes of the int16 range are reachable.
func Encode(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}
		if s < 0 {
			out[i] = int16(s * 32768)
		} else {
			out[i] = int16(s * 32767)
		}
	}
	return out
}

// Decode maps signed 16-bit PCM back to normalized floating-point samples.
func Decode(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}

// Bytes packs samples as little-endian 16-bit PCM, the wire form for binary
// frames.
func Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

// Samples unpacks little-endian 16-bit PCM bytes. A trailing odd byte is
// dropped.
func Samples(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	return out
}
