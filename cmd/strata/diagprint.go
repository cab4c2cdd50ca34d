package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"strata/internal/diag"
	"strata/internal/tir"
)

var (
	sevErrorColor   = color.New(color.FgRed, color.Bold)
	sevWarningColor = color.New(color.FgYellow, color.Bold)
	sevInfoColor    = color.New(color.FgCyan)
)

// printDiagnostics renders a bag to stderr, one finding per line, with the
// offending operation shown in dump syntax when available.
func printDiagnostics(bag *diag.Bag) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Sort()
	for _, d := range bag.Items() {
		sev := sevInfoColor
		switch d.Severity {
		case diag.SevError:
			sev = sevErrorColor
		case diag.SevWarning:
			sev = sevWarningColor
		}
		fmt.Fprintf(os.Stderr, "%s [%s] %s\n", sev.Sprint(d.Severity.String()), d.Code, d.Message)
		if op, ok := d.Primary.(*tir.Op); ok {
			fmt.Fprintf(os.Stderr, "  at #%d: %s\n", op.ID(), op.String())
		}
		for _, note := range d.Notes {
			if op, ok := note.Op.(*tir.Op); ok {
				fmt.Fprintf(os.Stderr, "  note: %s (#%d)\n", note.Msg, op.ID())
			} else {
				fmt.Fprintf(os.Stderr, "  note: %s\n", note.Msg)
			}
		}
	}
}
