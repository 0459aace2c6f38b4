package analyze

import "atalan/internal/ir"

// LabelIndex maps every label name defined anywhere in prog — by a LABEL
// instruction or, once blockbuild.Build has consumed those, by a block's
// Label — to the name of the procedure that defines it. blockbuild.Build
// consults the
// complement of one procedure's own labels (as "labels defined in other
// procedures") to tell an undefined-anywhere jump target apart from one
// that illegally names a label owned by a different procedure (spec
// §4.6/§4.7).
func LabelIndex(prog *Program) map[string]string {
	idx := map[string]string{}
	for _, proc := range prog.Procedures {
		bl := ir.BodyOf(proc)
		if bl == nil {
			continue
		}
		for b := range bl.Blocks {
			if b.Label != nil {
				idx[b.Label.Name] = proc.Name
			}
			for i := range b.Instrs {
				if i.Op == ir.LABEL && i.Result != nil {
					idx[i.Result.Name] = proc.Name
				}
			}
		}
	}
	return idx
}

// OtherProcLabels returns the subset of idx naming a procedure other than
// procName, suitable as blockbuild.Build's otherProcLabels argument.
func OtherProcLabels(idx map[string]string, procName string) map[string]bool {
	out := make(map[string]bool, len(idx))
	for label, owner := range idx {
		if owner != procName {
			out[label] = true
		}
	}
	return out
}
