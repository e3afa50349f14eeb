package mat4

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-5)

func TestIdentityMul(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateZ(0.3))
	if diff := cmp.Diff(m, Identity().Mul(m), approx); diff != "" {
		t.Errorf("I*M mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m, m.Mul(Identity()), approx); diff != "" {
		t.Errorf("M*I mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateScale(t *testing.T) {
	m := Translate(10, 0, -5).Mul(Scale(2, 3, 4))
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec4{12, 3, -1, 1}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("transform mismatch (-want +got):\n%s", diff)
	}
}

func TestRotations(t *testing.T) {
	half := math32.Pi / 2
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec4
	}{
		{"x", RotateX(half), Vec3{0, 1, 0}, Vec4{0, 0, 1, 1}},
		{"y", RotateY(half), Vec3{0, 0, 1}, Vec4{1, 0, 0, 1}},
		{"z", RotateZ(half), Vec3{1, 0, 0}, Vec4{0, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPerspective(t *testing.T) {
	p := Perspective(Radians(90), 2, 1, 100)
	// Near plane maps to -1, far plane to +1.
	near := p.TransformPoint(Vec3{0, 0, -1})
	far := p.TransformPoint(Vec3{0, 0, -100})
	if z := near[2] / near[3]; math32.Abs(z+1) > 1e-5 {
		t.Errorf("near depth = %v, want -1", z)
	}
	if z := far[2] / far[3]; math32.Abs(z-1) > 1e-4 {
		t.Errorf("far depth = %v, want 1", z)
	}
	// A point on the right edge of the frustum at depth 1 maps to x = 1.
	edge := p.TransformPoint(Vec3{2, 0, -1})
	if x := edge[0] / edge[3]; math32.Abs(x-1) > 1e-5 {
		t.Errorf("edge x = %v, want 1", x)
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, -10, 10}
	v := LookAt(eye, Vec3{}, Vec3{0, 0, 1})

	// The eye maps to the origin and the target lies on the -Z axis.
	if diff := cmp.Diff(Vec4{0, 0, 0, 1}, v.TransformPoint(eye), cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("eye mismatch (-want +got):\n%s", diff)
	}
	target := v.TransformPoint(Vec3{})
	dist := eye.Length()
	if diff := cmp.Diff(Vec4{0, 0, -dist, 1}, target, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}

	if LookAt(eye, eye, Vec3{0, 0, 1}) != Identity() {
		t.Error("degenerate LookAt should be identity")
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()
	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose() = %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("double transpose should be identity operation")
	}
}

func TestVec3(t *testing.T) {
	x, y := Vec3{1, 0, 0}, Vec3{0, 1, 0}
	if x.Cross(y) != (Vec3{0, 0, 1}) {
		t.Errorf("Cross = %v", x.Cross(y))
	}
	if (Vec3{3, 4, 0}).Length() != 5 {
		t.Error("Length of (3,4,0) should be 5")
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("Normalize of zero should be zero")
	}
	if x.Add(y).Sub(y) != x {
		t.Error("Add/Sub mismatch")
	}
}
