package diag

import "strata/internal/ir"

// Reporter is the minimal contract for receiving diagnostics from the
// analyses. Implementations: BagReporter (collects into a Bag),
// NopReporter, DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary ir.Operation, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary ir.Operation, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Primary:  primary,
		},
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary ir.Operation, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary ir.Operation, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// WithNote appends a note to the pending diagnostic.
func (b *ReportBuilder) WithNote(op ir.Operation, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Op: op, Msg: msg})
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Primary, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, ir.Operation, string, []Note) {}

// BagReporter is an adapter that writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary ir.Operation, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}

// DedupReporter forwards each (code, operation) pair at most once. Analyses
// that sweep the same operation repeatedly wrap their reporter in one of
// these so the host sees one finding per cause.
type DedupReporter struct {
	Next Reporter
	seen map[dedupKey]struct{}
}

type dedupKey struct {
	code Code
	op   ir.Operation
}

func (r *DedupReporter) Report(code Code, sev Severity, primary ir.Operation, msg string, notes []Note) {
	if r.Next == nil {
		return
	}
	key := dedupKey{code: code, op: primary}
	if r.seen == nil {
		r.seen = make(map[dedupKey]struct{}, 8)
	}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.Next.Report(code, sev, primary, msg, notes)
}
