package portdex

import (
	"fmt"
	"strings"
)

// FormatOptions controls which optional sections lookup formatting emits.
type FormatOptions struct {
	// ShowLinks emits a separate links section per assignment.
	ShowLinks bool

	// ShowRefs emits the notes/references section per assignment.
	ShowRefs bool
}

// FormatAssignment formats a single assignment as a multi-line block.
func FormatAssignment(a *PortAssignment, opts FormatOptions) string {
	var b strings.Builder

	body := a.Description
	if body == "" {
		body = strings.Join(a.ServiceNames, ", ")
	}
	b.WriteString(body)

	if claims := formatClaims(a.Protocols); claims != "" {
		b.WriteString("\nprotocols: ")
		b.WriteString(claims)
	}
	b.WriteString("\nstatus: ")
	b.WriteString(a.Status.String())

	if opts.ShowLinks && len(a.Links) > 0 {
		b.WriteString("\nlinks:")
		for _, l := range a.Links {
			if l.Text != "" {
				b.WriteString(fmt.Sprintf("\n  %s: %s", l.Text, l.URL))
			} else {
				b.WriteString("\n  " + l.URL)
			}
		}
	}
	if opts.ShowRefs && len(a.SourceRefs) > 0 {
		b.WriteString("\nreferences:")
		for _, r := range a.SourceRefs {
			b.WriteString("\n  " + r)
		}
	}

	return b.String()
}

// FormatPortLookup formats the answer to a lookup-by-port query.
// An empty result is a valid answer and says so explicitly.
func FormatPortLookup(port uint16, proto Protocol, results []*PortAssignment, opts FormatOptions) string {
	label := fmt.Sprintf("%d", port)
	if proto != ProtocolUnknown {
		label = fmt.Sprintf("%d/%s", port, proto)
	}
	category := CategoryOf(port)

	if len(results) == 0 {
		return fmt.Sprintf("Port %s is a %s port with no known use cases", label, category)
	}

	caseForm := "cases"
	if len(results) == 1 {
		caseForm = "case"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Port %s is a %s port with %d known use %s\n", label, category, len(results), caseForm)
	for i, a := range results {
		b.WriteString("\n")
		b.WriteString(indent(fmt.Sprintf("%d: %s", i+1, FormatAssignment(a, opts)), "    "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatKeywordLookup formats the answer to a lookup-by-keyword query.
func FormatKeywordLookup(term string, matches []Match, opts FormatOptions) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No usage found for %q", term)
	}

	matchForm := "matches"
	if len(matches) == 1 {
		matchForm = "match"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s for %q\n", len(matches), matchForm, term)
	for i, m := range matches {
		b.WriteString("\n")
		head := fmt.Sprintf("%d: port %d (%s)\n%s", i+1, m.Port, CategoryOf(m.Port), FormatAssignment(m.Assignment, opts))
		b.WriteString(indent(head, "    "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWarnings formats parse warnings as a distinct advisory section so a
// user can trust that a partial answer is not silently wrong.
func FormatWarnings(warnings []ParseWarning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d row(s) could not be fully parsed:\n", len(warnings))
	for _, w := range warnings {
		b.WriteString("  " + w.String() + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatClaims(claims []ProtocolClaim) string {
	var parts []string
	for _, pc := range claims {
		if pc.Claim == ClaimUnknown && pc.Protocol != ProtocolUnknown {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", pc.Protocol, pc.Claim))
	}
	return strings.Join(parts, ", ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
