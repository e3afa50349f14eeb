package flowarc

import "testing"

func TestVec2(t *testing.T) {
	a := V2(3, 4)
	b := V2(1, 1)

	if got := a.Add(b); got != V2(4, 5) {
		t.Errorf("Add = %v, want (4, 5)", got)
	}
	if got := a.Sub(b); got != V2(2, 3) {
		t.Errorf("Sub = %v, want (2, 3)", got)
	}
	if got := a.Mul(2); got != V2(6, 8) {
		t.Errorf("Mul = %v, want (6, 8)", got)
	}
	if got := a.Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
}

func TestVec3(t *testing.T) {
	v := V3(5, 7, 9).Sub(V3(1, 2, 3))
	if v != V3(4, 5, 6) {
		t.Errorf("Sub = %v, want (4, 5, 6)", v)
	}
	if v.XY() != V2(4, 5) {
		t.Errorf("XY = %v, want (4, 5)", v.XY())
	}
}
