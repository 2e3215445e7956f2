package recon

import (
	"fmt"
	"strings"
)

// renderTextReport builds a plain-text result document for messages that
// carry no lab-rendered report. The layout mirrors a printed requisition:
// header, then one block per report with its values.
func renderTextReport(msg *InboundMessage, orderNumber string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "LABORATORY RESULT REPORT\n")
	fmt.Fprintf(&b, "Order:    %s\n", orderNumber)
	if name := msg.PatientDisplayName(); name != "" {
		fmt.Fprintf(&b, "Patient:  %s\n", name)
	}
	if msg.Patient.BirthDate != "" {
		fmt.Fprintf(&b, "DOB:      %s\n", msg.Patient.BirthDate)
	}
	if msg.Facility.Name != "" {
		fmt.Fprintf(&b, "Lab:      %s\n", msg.Facility.Name)
	}
	if msg.CollectedAt != nil {
		fmt.Fprintf(&b, "Collected: %s\n", msg.CollectedAt.Format("2006-01-02 15:04"))
	}

	for _, rep := range msg.Reports {
		fmt.Fprintf(&b, "\n%s  %s  [%s]\n", rep.Code, rep.Name, rep.Status)
		for _, rv := range rep.Results {
			line := fmt.Sprintf("  %-12s %s", rv.Code, rv.Value)
			if rv.Units != "" {
				line += " " + rv.Units
			}
			if rv.ReferenceRange != "" {
				line += "  (" + rv.ReferenceRange + ")"
			}
			if rv.AbnormalFlag != "" {
				line += "  *" + rv.AbnormalFlag
			}
			b.WriteString(line + "\n")
		}
		for _, note := range rep.Notes {
			fmt.Fprintf(&b, "  NOTE: %s\n", note)
		}
	}
	return []byte(b.String())
}
