package classdef

import (
	"testing"

	"github.com/voskan/mjsvm/object"
	"github.com/voskan/mjsvm/value"
)

func newFloatArray(env *testEnv, vals ...float64) *object.Object {
	arr := NewArray(env)
	for i, v := range vals {
		arraySet(env, arr, i, value.Float64(v))
	}
	arr.ArrayLength = len(vals)
	return arr
}

func TestArrayPushAppendsAndReturnsNewLength(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2)
	push := getMethod(env, env.table.Array.Prototype, "push")

	got := callMethod(env, push, object.ToValue(arr), value.Float64(3))

	if n, _ := got.Number(); n != 3 {
		t.Fatalf("expected new length 3, got %v", n)
	}
	if arrayGet(env, arr, 2).Float64() != 3 {
		t.Fatalf("expected arr[2] == 3")
	}
}

func TestArrayPopRemovesLastElement(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2, 3)
	pop := getMethod(env, env.table.Array.Prototype, "pop")

	got := callMethod(env, pop, object.ToValue(arr))

	if got.Float64() != 3 {
		t.Fatalf("expected popped value 3, got %v", got.Float64())
	}
	if arr.ArrayLength != 2 {
		t.Fatalf("expected length 2 after pop, got %d", arr.ArrayLength)
	}
}

func TestArrayPopOnEmptyArrayReturnsUndefined(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env)
	pop := getMethod(env, env.table.Array.Prototype, "pop")

	got := callMethod(env, pop, object.ToValue(arr))
	if got.Kind() != value.KindUndefined {
		t.Fatalf("expected Undefined, got %v", got.Kind())
	}
}

func TestArrayMapAppliesCallback(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2, 3)
	mapFn := getMethod(env, env.table.Array.Prototype, "map")

	double := nativeFn(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(interface{ Arg(int) value.Value })
		n, _ := hc.Arg(0).Number()
		return value.Float64(n * 2)
	})

	got := callMethod(env, mapFn, object.ToValue(arr), double)
	out := object.FromValue(got)
	if out.ArrayLength != 3 {
		t.Fatalf("expected result length 3, got %d", out.ArrayLength)
	}
	if arrayGet(env, out, 1).Float64() != 4 {
		t.Fatalf("expected out[1] == 4, got %v", arrayGet(env, out, 1).Float64())
	}
}

func TestArrayFilterKeepsMatching(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2, 3, 4)
	filter := getMethod(env, env.table.Array.Prototype, "filter")

	even := nativeFn(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(interface{ Arg(int) value.Value })
		n, _ := hc.Arg(0).Number()
		return value.Bool(int64(n)%2 == 0)
	})

	got := callMethod(env, filter, object.ToValue(arr), even)
	out := object.FromValue(got)
	if out.ArrayLength != 2 {
		t.Fatalf("expected 2 matches, got %d", out.ArrayLength)
	}
}

func TestArrayReduceWithoutInitialUsesFirstElement(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2, 3, 4)
	reduce := getMethod(env, env.table.Array.Prototype, "reduce")

	sum := nativeFn(env, func(ctx any, argc uint32, frame any) value.Value {
		hc := frame.(interface{ Arg(int) value.Value })
		a, _ := hc.Arg(0).Number()
		b, _ := hc.Arg(1).Number()
		return value.Float64(a + b)
	})

	got := callMethod(env, reduce, object.ToValue(arr), sum)
	if got.Float64() != 10 {
		t.Fatalf("expected sum 10, got %v", got.Float64())
	}
}

func TestArrayReduceOnEmptyWithoutInitialThrows(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env)
	reduce := getMethod(env, env.table.Array.Prototype, "reduce")

	sum := nativeFn(env, func(ctx any, argc uint32, frame any) value.Value {
		return value.Undefined
	})

	got := callMethod(env, reduce, object.ToValue(arr), sum)
	if !got.IsException() {
		t.Fatal("expected a TypeError exception for reduce on empty array")
	}
}

func TestArrayLengthAccessorTruncatesOnSet(t *testing.T) {
	env := newEnv()
	arr := newFloatArray(env, 1, 2, 3, 4)

	lengthKey := env.global.InternString("length", func() value.Value { return jsstringValue("length") })
	lookup := arr.GetProperty(lengthKey)
	if lookup.Kind != object.LookupAccessor {
		t.Fatal("expected length to be an accessor property")
	}

	callMethod(env, lookup.Setter, object.ToValue(arr), value.Float64(2))
	if arr.ArrayLength != 2 {
		t.Fatalf("expected length truncated to 2, got %d", arr.ArrayLength)
	}

	got := callMethod(env, lookup.Getter, object.ToValue(arr))
	if got.Float64() != 2 {
		t.Fatalf("expected length getter to return 2, got %v", got.Float64())
	}
}
