package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Analysis findings
	AnaInfo              Code = 1000
	AnaShapeMismatch     Code = 1001
	AnaEncodingMismatch  Code = 1002
	AnaUnsupportedLayout Code = 1003
	AnaMissingAxis       Code = 1004
	AnaAxisOutOfRange    Code = 1005
	AnaScratchOverBudget Code = 1006

	// Snapshot (module file) findings
	SnapInfo         Code = 2000
	SnapBadSchema    Code = 2001
	SnapBadReference Code = 2002

	// Project manifest findings
	ProjInfo      Code = 3000
	ProjBadTarget Code = 3001
)

func (c Code) String() string {
	switch {
	case c >= 3000:
		return fmt.Sprintf("PRJ%04d", uint16(c))
	case c >= 2000:
		return fmt.Sprintf("SNP%04d", uint16(c))
	case c >= 1000:
		return fmt.Sprintf("ANA%04d", uint16(c))
	}
	return fmt.Sprintf("UNK%04d", uint16(c))
}
