// Package diag carries non-fatal findings from the analyses back to the
// host compiler. A Diagnostic points at the offending IR operation; the
// host decides how (and whether) to render it. Analyses never print.
package diag
