package main

import (
	"encoding/binary"
	"io"
	"sync"
)

// sampleStream adapts the APU's mono float32 sample buffer to the io.Reader
// ebiten/audio expects: little-endian 16-bit stereo PCM, read lazily as the
// player drains it.
type sampleStream struct {
	mu         sync.Mutex
	sampleRate int
	pending    []float32
	buf        []byte
}

func newSampleStream(sampleRate int) *sampleStream {
	return &sampleStream{sampleRate: sampleRate}
}

// feed appends newly produced APU samples, called once per emulated frame.
func (s *sampleStream) feed(samples []float32) {
	if len(samples) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, samples...)
}

// Read implements io.Reader, converting pending float32 samples to stereo
// 16-bit PCM. If no samples are ready it emits silence so the player never
// underruns.
func (s *sampleStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}

	n := frames
	if n > len(s.pending) {
		n = len(s.pending)
	}

	for i := 0; i < n; i++ {
		v := int16(s.pending[i] * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(v))
	}
	for i := n; i < frames; i++ {
		binary.LittleEndian.PutUint16(p[i*4:], 0)
		binary.LittleEndian.PutUint16(p[i*4+2:], 0)
	}
	s.pending = s.pending[n:]

	return frames * 4, nil
}

var _ io.Reader = (*sampleStream)(nil)
