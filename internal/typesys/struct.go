package typesys

import "atalan/internal/cell"

// StructAssignOffsets walks t's members in declaration order; members
// lacking an explicit address get a running offset assigned, advancing by
// each member's size (spec §4.2). It is idempotent: a member that already
// carries an address (explicit or from a previous call) is left alone,
// and the running offset resumes right after it.
func StructAssignOffsets(pool *cell.Pool, t *cell.Cell) {
	if t == nil || t.TypeInfo == nil || t.TypeInfo.Variant != cell.STRUCT {
		return
	}
	var offset int64
	for _, m := range t.TypeInfo.Members {
		if adr := m.Adr(); adr != nil {
			if v, ok := ConstIntValue(adr); ok {
				offset = v
			}
		} else {
			m.SetAdr(NewConstInt(pool, offset))
		}
		offset += int64(TypeSize(m.Type))
	}
}
