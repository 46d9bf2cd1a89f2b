// Package audio plays the book's sound effects.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the speaker sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio: not initialized")

// Effect is a decoded sound held in memory so it can be replayed.
type Effect struct {
	buffer *beep.Buffer
}

// DecodeEffect decodes WAV data into an Effect.
func DecodeEffect(data []byte) (*Effect, error) {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return &Effect{buffer: buf}, nil
}

// Duration returns the length of the effect.
func (e *Effect) Duration() time.Duration {
	return e.buffer.Format().SampleRate.D(e.buffer.Len())
}

// Manager mixes effects onto the speaker.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	sfxVolume    float64

	effects map[string]*Effect
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		masterVolume: 1.0,
		sfxVolume:    1.0,
		mixer:        &beep.Mixer{},
		effects:      make(map[string]*Effect),
	}
}

// Init opens the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.sampleRate = DefaultSampleRate
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	return nil
}

// Close stops playback.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		speaker.Clear()
	}
	m.initialized = false
}

// IsInitialized returns whether the speaker is open.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// SetSFXVolume sets the effect volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolume = clamp(vol, 0, 1)
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// GetSFXVolume returns the effect volume.
func (m *Manager) GetSFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolume
}

// Register decodes data and stores it under name.
func (m *Manager) Register(name string, data []byte) error {
	e, err := DecodeEffect(data)
	if err != nil {
		return fmt.Errorf("effect %s: %w", name, err)
	}
	m.mu.Lock()
	m.effects[name] = e
	m.mu.Unlock()
	return nil
}

// Has reports whether an effect is registered under name.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.effects[name]
	return ok
}

// Play starts the named effect. Overlapping plays are mixed.
func (m *Manager) Play(name string) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.masterVolume * m.sfxVolume
	e, ok := m.effects[name]
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if !ok {
		return fmt.Errorf("audio: unknown effect %q", name)
	}
	if vol <= 0 {
		return nil
	}

	var s beep.Streamer = e.buffer.Streamer(0, e.buffer.Len())
	if rate := e.buffer.Format().SampleRate; rate != m.sampleRate {
		s = beep.Resample(4, rate, m.sampleRate, s)
	}

	speaker.Lock()
	m.mixer.Add(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeExponent(vol),
	})
	speaker.Unlock()
	return nil
}

// volumeExponent converts a linear 0-1 volume to the base-2 exponent
// effects.Volume expects, so that 2^exp == vol.
func volumeExponent(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
