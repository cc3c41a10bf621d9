package worker

import (
	"context"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV writes a minimal mono PCM16 WAV file at sampleRate with the
// given samples, for waveform computation tests.
func writeTestWAV(t *testing.T, samples []int16, sampleRate uint32) string {
	t.Helper()
	f, err := os.CreateTemp("", "waveform-test-*.wav")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(f.Name()) })

	dataBytes := uint32(len(samples) * 2)
	byteRate := sampleRate * 2

	write := func(b []byte) { _, err := f.Write(b); require.NoError(t, err) }
	u32 := func(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }

	write([]byte("RIFF"))
	write(u32(36 + dataBytes))
	write([]byte("WAVE"))
	write([]byte("fmt "))
	write(u32(16))
	write(u16(1)) // PCM
	write(u16(1)) // mono
	write(u32(sampleRate))
	write(u32(byteRate))
	write(u16(2))  // block align
	write(u16(16)) // bits per sample
	write([]byte("data"))
	write(u32(dataBytes))
	for _, s := range samples {
		write(u16(uint16(s)))
	}
	require.NoError(t, f.Close())
	return f.Name()
}

func TestWaveformJob_ComputesNormalizedPeakPairs(t *testing.T) {
	sampleRate := uint32(1000) // 1 sample per ms, one chunk == 1000 samples
	samples := make([]int16, sampleRate)
	samples[10] = 16384  // +0.5
	samples[20] = -32768 // -1.0

	path := writeTestWAV(t, samples, sampleRate)

	job := &WaveformJob{Cache: NewWaveformCache(4), WAVPath: path}
	cancel := make(chan struct{})

	var lastCurrent, lastTotal int64
	result, err := job.Run(context.Background(), cancel, func(current, total int64, _ string) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)

	data := result.(*WaveformData)
	require.Len(t, data.PositiveMs, 1000)
	require.Len(t, data.NegativeMs, 1000)
	assert.InDelta(t, 0.5, data.PositiveMs[10], 0.01)
	assert.InDelta(t, -1.0, data.NegativeMs[20], 0.01)
	assert.Equal(t, int64(1), lastCurrent)
	assert.Equal(t, int64(1), lastTotal)
}

func TestWaveformJob_CachesByContentHash(t *testing.T) {
	path := writeTestWAV(t, []int16{0, 1, 2, 3}, 1000)
	cache := NewWaveformCache(4)

	job := &WaveformJob{Cache: cache, WAVPath: path}
	first, err := job.Run(context.Background(), make(chan struct{}), func(int64, int64, string) {})
	require.NoError(t, err)

	// A second run against the same file content must hit the cache and
	// return the identical *WaveformData pointer rather than recomputing.
	second, err := job.Run(context.Background(), make(chan struct{}), func(int64, int64, string) {})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestWaveformCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewWaveformCache(2)
	c.Put("a", &WaveformData{})
	c.Put("b", &WaveformData{})
	c.Get("a") // touch a, making b the least recently used
	c.Put("c", &WaveformData{})

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")
	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
}
