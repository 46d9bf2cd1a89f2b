package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector Normalize() = %v, want zero", got)
	}
}

func TestVec3ArrayRoundTrip(t *testing.T) {
	v := V3(1, -2, 3)
	if got := Vec3FromArray(v.Array()); got != v {
		t.Errorf("Vec3FromArray(Array()) = %v, want %v", got, v)
	}
}
