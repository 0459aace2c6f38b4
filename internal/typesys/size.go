package typesys

import "atalan/internal/cell"

// AdrSize is the platform address size in bytes, consulted by TypeSize for
// the ADR variant. It defaults to 2 (spec §4.2) and is overridden once by
// internal/platform when a CPU/platform descriptor is loaded.
var AdrSize = 2

// byteWidth returns the number of bytes needed to hold v. This mirrors the
// original compiler's IntByteSize (src/atalan/operations/properties.c):
// bucketing is by upper-bound magnitude only (<=255, <=65535, <=0xFFFFFF,
// else 4), which is why an INT type declared 0..255 costs exactly one byte
// even though 255 does not fit in a strictly signed single byte. Ranges
// with a very negative Min are bucketed the same way the source does
// (a negative value always satisfies "<= 255"); in practice Min never
// gets that extreme because upstream range inference keeps it within the
// platform's representable span.
func byteWidth(v int64) int {
	switch {
	case v <= 255:
		return 1
	case v <= 65535:
		return 2
	case v <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

// TypeSize returns the number of bytes required to represent t in memory
// (spec §4.2, property 3).
func TypeSize(t *cell.Cell) int {
	if t == nil || t.Kind != cell.TYPE || t.TypeInfo == nil {
		return 0
	}
	ti := t.TypeInfo
	switch ti.Variant {
	case cell.INT:
		wMax := byteWidth(ti.Max)
		wMin := byteWidth(ti.Min)
		if wMax > wMin {
			return wMax
		}
		return wMin
	case cell.ADR:
		return AdrSize
	case cell.ARRAY:
		dims := arrayDimCount(ti.Index)
		return TypeSize(ti.Element) * int(dims)
	case cell.STRUCT:
		total := 0
		for _, m := range ti.Members {
			total += TypeSize(m.Type)
		}
		return total
	case cell.TUPLE_T:
		return TypeSize(ti.Left) + TypeSize(ti.Right)
	default:
		// STRING/LABEL/PROC/MACRO/SCOPE_T/VARIANT_T/TYPE_T/UNDEFINED:
		// invariant 5 covers the storage-free kinds; STRING's length is
		// data-dependent and computed from the literal by the emitter,
		// not from the type.
		return 0
	}
}

// arrayDimCount returns the number of elements along an array's index
// type: max-min+1 for a single INT dimension, or the product across a
// TUPLE_T chain of dimension types for a multi-dimensional array.
func arrayDimCount(index *cell.Cell) int64 {
	if index == nil || index.Kind != cell.TYPE || index.TypeInfo == nil {
		return 0
	}
	switch index.TypeInfo.Variant {
	case cell.TUPLE_T:
		return arrayDimCount(index.TypeInfo.Left) * arrayDimCount(index.TypeInfo.Right)
	case cell.INT:
		return index.TypeInfo.Max - index.TypeInfo.Min + 1
	default:
		return 0
	}
}

// EffectiveStep returns the array type's per-element stride: Step itself,
// unless Step == 0, in which case it falls through to TypeSize(Element)
// (open question 4 — this fallback is load-bearing and must be
// preserved).
func EffectiveStep(t *cell.Cell) int64 {
	if t == nil || t.TypeInfo == nil {
		return 0
	}
	if t.TypeInfo.Step != 0 {
		return t.TypeInfo.Step
	}
	return int64(TypeSize(t.TypeInfo.Element))
}
