package typesys

import "atalan/internal/cell"
import "testing"

func TestTypeSizeIntByteWidth(t *testing.T) {
	pool := cell.NewPool()
	cases := []struct {
		min, max int64
		want     int
	}{
		{0, 9, 1},
		{0, 255, 1},
		{-128, 127, 1},
		{0, 256, 2},
		{0, 65535, 2},
		{0, 65536, 3},
		{0, 0xFFFFFF, 3},
		{0, 0x1000000, 4},
	}
	for _, c := range cases {
		ty := NewInt(pool, c.min, c.max)
		if got := TypeSize(ty); got != c.want {
			t.Errorf("TypeSize(%d..%d) = %d, want %d", c.min, c.max, got, c.want)
		}
	}
}

func TestTypeSizeMonotonicOnceFrozen(t *testing.T) {
	pool := cell.NewPool()
	ty := NewInt(pool, 0, 9)
	s1 := TypeSize(ty)
	s2 := TypeSize(ty)
	if s1 != s2 {
		t.Fatalf("TypeSize not stable: %d vs %d", s1, s2)
	}
}

func TestTypeSizeArray(t *testing.T) {
	pool := cell.NewPool()
	elem := NewInt(pool, 0, 255) // 1 byte
	idx := NewInt(pool, 0, 9)    // 10 elements
	arr := NewArray(pool, elem, idx, 0)
	if got, want := TypeSize(arr), 10; got != want {
		t.Fatalf("TypeSize(array) = %d, want %d", got, want)
	}
}

func TestTypeSizeArrayMultiDim(t *testing.T) {
	pool := cell.NewPool()
	elem := NewInt(pool, 0, 255)
	dim1 := NewInt(pool, 0, 3) // 4
	dim2 := NewInt(pool, 0, 4) // 5
	idx := NewTuple(pool, dim1, dim2)
	arr := NewArray(pool, elem, idx, 0)
	if got, want := TypeSize(arr), 20; got != want {
		t.Fatalf("TypeSize(array 2d) = %d, want %d", got, want)
	}
}

func TestTypeSizeAdrDefault(t *testing.T) {
	pool := cell.NewPool()
	adr := NewAdr(pool, nil)
	if got, want := TypeSize(adr), 2; got != want {
		t.Fatalf("TypeSize(adr) = %d, want %d", got, want)
	}
}

func TestTypeSizeStructSumsMembers(t *testing.T) {
	pool := cell.NewPool()
	byteT := NewInt(pool, 0, 255)
	wordT := NewInt(pool, 0, 65535)

	m1 := pool.Alloc(cell.VAR)
	m1.Name = "a"
	m1.Type = byteT
	m2 := pool.Alloc(cell.VAR)
	m2.Name = "b"
	m2.Type = wordT

	st := NewStruct(pool, []*cell.Cell{m1, m2})
	if got, want := TypeSize(st), 3; got != want {
		t.Fatalf("TypeSize(struct) = %d, want %d", got, want)
	}
}

func TestStructAssignOffsetsIdempotent(t *testing.T) {
	pool := cell.NewPool()
	byteT := NewInt(pool, 0, 255)
	wordT := NewInt(pool, 0, 65535)

	m1 := pool.Alloc(cell.VAR)
	m1.Name = "a"
	m1.Type = byteT
	m2 := pool.Alloc(cell.VAR)
	m2.Name = "b"
	m2.Type = wordT
	m3 := pool.Alloc(cell.VAR)
	m3.Name = "c"
	m3.Type = byteT

	st := NewStruct(pool, []*cell.Cell{m1, m2, m3})
	StructAssignOffsets(pool, st)

	off1, _ := ConstIntValue(m1.Adr())
	off2, _ := ConstIntValue(m2.Adr())
	off3, _ := ConstIntValue(m3.Adr())
	if off1 != 0 || off2 != 1 || off3 != 3 {
		t.Fatalf("offsets = %d,%d,%d want 0,1,3", off1, off2, off3)
	}

	StructAssignOffsets(pool, st)
	off1b, _ := ConstIntValue(m1.Adr())
	off2b, _ := ConstIntValue(m2.Adr())
	off3b, _ := ConstIntValue(m3.Adr())
	if off1b != off1 || off2b != off2 || off3b != off3 {
		t.Fatalf("StructAssignOffsets not idempotent: (%d,%d,%d) vs (%d,%d,%d)",
			off1, off2, off3, off1b, off2b, off3b)
	}
}

func TestStructAssignOffsetsRespectsExplicitAddress(t *testing.T) {
	pool := cell.NewPool()
	byteT := NewInt(pool, 0, 255)

	m1 := pool.Alloc(cell.VAR)
	m1.Type = byteT
	m1.SetAdr(NewConstInt(pool, 100))
	m2 := pool.Alloc(cell.VAR)
	m2.Type = byteT

	st := NewStruct(pool, []*cell.Cell{m1, m2})
	StructAssignOffsets(pool, st)

	off2, _ := ConstIntValue(m2.Adr())
	if off2 != 101 {
		t.Fatalf("offset of m2 = %d, want 101", off2)
	}
}

func TestEffectiveStepFallsBackToElementSize(t *testing.T) {
	pool := cell.NewPool()
	elem := NewInt(pool, 0, 65535) // 2 bytes
	idx := NewInt(pool, 0, 9)
	arr := NewArray(pool, elem, idx, 0)
	if got, want := EffectiveStep(arr), int64(2); got != want {
		t.Fatalf("EffectiveStep = %d, want %d", got, want)
	}
	arrExplicit := NewArray(pool, elem, idx, 5)
	if got, want := EffectiveStep(arrExplicit), int64(5); got != want {
		t.Fatalf("EffectiveStep explicit = %d, want %d", got, want)
	}
}

func TestVarMatchType(t *testing.T) {
	pool := cell.NewPool()
	ty := NewInt(pool, 0, 9)
	in := NewConstInt(pool, 5)
	out := NewConstInt(pool, 10)
	if !VarMatchType(in, ty) {
		t.Fatal("5 should match 0..9")
	}
	if VarMatchType(out, ty) {
		t.Fatal("10 should not match 0..9")
	}
}

func TestDerivePreservesBaseRangeAndMarksFlexible(t *testing.T) {
	pool := cell.NewPool()
	base := NewInt(pool, 0, 255)
	derived := Derive(pool, base)
	if derived.Type != base {
		t.Fatal("derived type must back-reference base")
	}
	if !derived.TypeInfo.Flexible {
		t.Fatal("derived type must start Flexible")
	}
	if derived.TypeInfo.Min != 0 || derived.TypeInfo.Max != 255 {
		t.Fatalf("derived range = %d..%d, want 0..255", derived.TypeInfo.Min, derived.TypeInfo.Max)
	}
}
