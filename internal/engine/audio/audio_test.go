package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
)

// sineWAV encodes a short tone the way a page-turn asset would be stored.
func sineWAV(t *testing.T, d time.Duration) []byte {
	t.Helper()
	format := beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}
	tone, err := generators.SineTone(format.SampleRate, 440)
	if err != nil {
		t.Fatalf("sine tone: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, beep.Take(format.SampleRate.N(d), tone), format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestVolumeExponent(t *testing.T) {
	tests := []struct {
		vol  float64
		gain float64
	}{
		{1.0, 1.0},
		{0.5, 0.5},
		{0.25, 0.25},
	}
	for _, tt := range tests {
		got := math.Pow(2, volumeExponent(tt.vol))
		if math.Abs(got-tt.gain) > 1e-12 {
			t.Errorf("2^volumeExponent(%v) = %v, want %v", tt.vol, got, tt.gain)
		}
	}
	if volumeExponent(0) > -90 {
		t.Errorf("zero volume should be effectively silent")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestDecodeEffect(t *testing.T) {
	e, err := DecodeEffect(sineWAV(t, 250*time.Millisecond))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d := e.Duration(); d < 240*time.Millisecond || d > 260*time.Millisecond {
		t.Errorf("duration = %v, want ~250ms", d)
	}

	if _, err := DecodeEffect([]byte("not a wav")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestManagerVolumes(t *testing.T) {
	m := New()
	if m.GetMasterVolume() != 1.0 || m.GetSFXVolume() != 1.0 {
		t.Fatalf("unexpected defaults %v %v", m.GetMasterVolume(), m.GetSFXVolume())
	}

	m.SetMasterVolume(2)
	if m.GetMasterVolume() != 1.0 {
		t.Errorf("master volume = %v, want 1.0 (clamped)", m.GetMasterVolume())
	}
	m.SetSFXVolume(-1)
	if m.GetSFXVolume() != 0 {
		t.Errorf("sfx volume = %v, want 0 (clamped)", m.GetSFXVolume())
	}
}

func TestPlayRequiresInit(t *testing.T) {
	m := New()
	if err := m.Register("page_turn", sineWAV(t, 50*time.Millisecond)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !m.Has("page_turn") {
		t.Fatal("effect not registered")
	}
	if err := m.Play("page_turn"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Play before Init = %v, want ErrNotInitialized", err)
	}
	if m.IsInitialized() {
		t.Error("manager should not be initialized")
	}
}
