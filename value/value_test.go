package value

import "testing"

func TestStrictEqualsPrimitives(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"undefined==undefined", Undefined, Undefined, true},
		{"null==null", Null, Null, true},
		{"undefined!=null", Undefined, Null, false},
		{"int64 equal", Int64(5), Int64(5), true},
		{"int64 not equal", Int64(5), Int64(6), false},
		{"float64 equal", Float64(1.5), Float64(1.5), true},
		{"nan not equal to itself", Float64(nan()), Float64(nan()), false},
		{"bool true==true", Bool(true), Bool(true), true},
		{"bool true!=false", Bool(true), Bool(false), false},
		{"int64 vs float64 different kinds", Int64(1), Float64(1), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.StrictEquals(c.b); got != c.want {
				t.Errorf("StrictEquals(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestExceptionBit(t *testing.T) {
	v := Int64(42)
	if v.IsException() {
		t.Fatal("fresh value should not carry the exception bit")
	}
	thrown := v.WithException()
	if !thrown.IsException() {
		t.Fatal("WithException should set the exception bit")
	}
	if thrown.Int64() != 42 {
		t.Fatal("WithException must not disturb the payload")
	}
	cleared := thrown.ClearException()
	if cleared.IsException() {
		t.Fatal("ClearException should clear the bit")
	}
}

func TestConstIndexRoundTrip(t *testing.T) {
	v := Int64(7).WithConstIndex(GlobalIndex(3))
	if !v.ConstIndex().IsGlobal() {
		t.Fatal("expected a global const index")
	}
	if v.ConstIndex().GlobalSlot() != 3 {
		t.Fatalf("GlobalSlot() = %d, want 3", v.ConstIndex().GlobalSlot())
	}
}

func TestNumber(t *testing.T) {
	if f, ok := Int64(3).Number(); !ok || f != 3 {
		t.Fatalf("Number() on Int64 = (%v, %v)", f, ok)
	}
	if f, ok := Float64(3.5).Number(); !ok || f != 3.5 {
		t.Fatalf("Number() on Float64 = (%v, %v)", f, ok)
	}
	if _, ok := Undefined.Number(); ok {
		t.Fatal("Number() on Undefined should report false")
	}
}
