package diag

import "strata/internal/ir"

// Note attaches secondary context to a diagnostic, typically pointing at a
// related operation (the first operand that set the reference encoding, the
// call site completing a cycle, and so on).
type Note struct {
	Op  ir.Operation
	Msg string
}

// Diagnostic is one finding attached to an operation.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  ir.Operation
	Notes    []Note
}

// WithNote returns a copy with one more note appended.
func (d Diagnostic) WithNote(op ir.Operation, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Op: op, Msg: msg})
	return d
}
