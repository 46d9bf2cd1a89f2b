package lighting

import (
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float32
		wantErr bool
	}{
		{"#ffffff", [3]float32{1, 1, 1}, false},
		{"222222", [3]float32{0x22 / 255.0, 0x22 / 255.0, 0x22 / 255.0}, false},
		{"0xFF0000", [3]float32{1, 0, 0}, false},
		{"#fff", [3]float32{}, true},
		{"#gggggg", [3]float32{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	rig := DefaultRig()
	d := rig.Sun.Direction()

	// From (2,4,2) toward the origin.
	if d[1] >= 0 {
		t.Errorf("sun should shine downward, got %v", d)
	}
	length := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
	if length < 0.999 || length > 1.001 {
		t.Errorf("direction not normalized: %v", d)
	}
	if d[0] != d[2] {
		t.Errorf("expected symmetric x/z, got %v", d)
	}
}

func TestRadiance(t *testing.T) {
	rig := DefaultRig()
	if got := rig.Sun.Radiance(); got != [3]float32{2, 2, 2} {
		t.Errorf("sun radiance = %v", got)
	}
	amb := rig.Ambient.Radiance()
	if amb[0] != float32(0x40)/255 {
		t.Errorf("ambient radiance = %v", amb)
	}
}
