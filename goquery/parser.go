// Package goquery provides the HTML table parser that extracts port
// assignments from the source document.
package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/portdex/portdex"
)

// Ensure Parser implements portdex.Parser at compile time.
var _ portdex.Parser = (*Parser)(nil)

// columnRole identifies what a table column holds, resolved from header
// names rather than position so document edits don't break extraction.
type columnRole int

const (
	colOther columnRole = iota
	colPort
	colProtoTCP
	colProtoUDP
	colProtoSCTP
	colProtoDCCP
	colProtocol // a single combined protocol column
	colService
	colDescription
)

// layout is the resolved column structure of one table.
type layout struct {
	roles []columnRole
}

// Parser extracts port assignments from wikitable-style HTML tables.
//
// Individual malformed rows degrade to warnings; the parse only fails when
// no table in the document matches the expected header structure.
type Parser struct {
	converter portdex.Converter
	baseURL   string
}

// Option configures a Parser.
type Option func(*Parser)

// WithConverter sets the converter used to render description cells as
// markdown text. Without one, descriptions fall back to plain cell text.
func WithConverter(c portdex.Converter) Option {
	return func(p *Parser) {
		p.converter = c
	}
}

// WithBaseURL sets the base used to absolutize relative hrefs found in
// description cells.
func WithBaseURL(u string) Option {
	return func(p *Parser) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{baseURL: "https://en.wikipedia.org"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse walks every port table in the document and returns the extracted
// assignments in document order plus the warnings accumulated along the way.
func (p *Parser) Parse(html string) ([]*portdex.PortAssignment, []portdex.ParseWarning, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, portdex.Errorf(portdex.EUNPROCESSABLE, "failed to parse document: %v", err)
	}

	var assignments []*portdex.PortAssignment
	var warnings []portdex.ParseWarning
	matched := 0
	row := 0

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		lay, ok := detectLayout(table)
		if !ok {
			return
		}
		matched++
		as, ws := p.parseTable(table, lay, &row)
		assignments = append(assignments, as...)
		warnings = append(warnings, ws...)
	})

	if matched == 0 {
		return nil, nil, portdex.Errorf(portdex.EUNPROCESSABLE, "no port tables found in document")
	}

	return assignments, warnings, nil
}

// detectLayout inspects a table's header row and maps its columns to roles.
// A table qualifies as a port table when it has a port column plus at least
// one other recognized column.
func detectLayout(table *goquery.Selection) (layout, bool) {
	headers := table.Find("tr").First().Find("th")
	if headers.Length() == 0 {
		return layout{}, false
	}

	var lay layout
	hasPort := false
	recognized := 0

	headers.Each(func(_ int, th *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(th.Text()))
		role := colOther
		switch {
		case strings.Contains(name, "port"):
			role = colPort
			hasPort = true
		case name == "tcp":
			role = colProtoTCP
		case name == "udp":
			role = colProtoUDP
		case name == "sctp":
			role = colProtoSCTP
		case name == "dccp":
			role = colProtoDCCP
		case strings.Contains(name, "protocol"):
			role = colProtocol
		case strings.Contains(name, "service") || name == "name":
			role = colService
		case strings.Contains(name, "description") || strings.Contains(name, "use"):
			role = colDescription
		}
		if role != colOther && role != colPort {
			recognized++
		}
		span := 1
		if v, ok := th.Attr("colspan"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			lay.roles = append(lay.roles, role)
		}
	})

	if !hasPort || recognized == 0 {
		return layout{}, false
	}

	// Without an explicit description header, the last column serves as one.
	hasDesc := false
	for _, r := range lay.roles {
		if r == colDescription {
			hasDesc = true
		}
	}
	if !hasDesc && len(lay.roles) > 0 && lay.roles[len(lay.roles)-1] == colOther {
		lay.roles[len(lay.roles)-1] = colDescription
	}

	return lay, true
}

// portCarry holds the port cell value inherited by subsequent rows of a
// multi-use port (rowspan). It is scoped to one table walk and discarded
// after the parser returns.
type portCarry struct {
	remaining int
	rng       portdex.PortRange
	valid     bool
	snippet   string
}

func (p *Parser) parseTable(table *goquery.Selection, lay layout, row *int) ([]*portdex.PortAssignment, []portdex.ParseWarning) {
	var assignments []*portdex.PortAssignment
	var warnings []portdex.ParseWarning
	var carry portCarry

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return // header or spacer row
		}
		*row++

		a, ws := p.parseRow(cells, lay, &carry, *row)
		warnings = append(warnings, ws...)
		if a != nil {
			assignments = append(assignments, a)
		}
	})

	return assignments, warnings
}

// parseRow extracts one assignment from a data row. It returns nil (with a
// warning already recorded) only when the port cannot be determined at all;
// every other partial failure degrades the affected field.
func (p *Parser) parseRow(cells *goquery.Selection, lay layout, carry *portCarry, row int) (*portdex.PortAssignment, []portdex.ParseWarning) {
	var warnings []portdex.ParseWarning
	warn := func(reason, snippet string) {
		warnings = append(warnings, portdex.ParseWarning{Row: row, Reason: reason, Snippet: snippet})
	}

	var rng portdex.PortRange
	rngValid := false
	var portSnippet string
	var portErr error
	var refs []string

	slot := 0
	carried := carry.remaining > 0
	portSlot := -1
	if carried {
		// Port value inherited from the prior row's spanning cell. That
		// cell still occupies its header slot in this row, so the slot is
		// skipped when cells are assigned below.
		rng, rngValid, portSnippet = carry.rng, carry.valid, carry.snippet
		carry.remaining--
		for i, r := range lay.roles {
			if r == colPort {
				portSlot = i
				break
			}
		}
	}

	claims := make(map[portdex.Protocol]claimInfo)
	var protocolText string
	var serviceText string
	var descCell *goquery.Selection

	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if slot >= len(lay.roles) {
			warn("row has more cells than header columns", strings.TrimSpace(cell.Text()))
			return false
		}
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span && slot < len(lay.roles); i++ {
			if slot == portSlot {
				slot++
				if slot >= len(lay.roles) {
					break
				}
			}
			role := lay.roles[slot]
			slot++

			switch role {
			case colPort:
				text, cellRefs := cellText(cell)
				refs = append(refs, cellRefs...)
				portSnippet = text
				parsed, err := parsePortRange(text)
				if err != nil {
					portErr = err
				} else {
					rng, rngValid = parsed, true
				}
				if v, ok := cell.Attr("rowspan"); ok {
					if n, convErr := strconv.Atoi(v); convErr == nil && n > 1 {
						*carry = portCarry{remaining: n - 1, rng: rng, valid: rngValid, snippet: text}
					}
				}
			case colProtoTCP:
				claims[portdex.ProtocolTCP] = claimForToken(cell)
			case colProtoUDP:
				claims[portdex.ProtocolUDP] = claimForToken(cell)
			case colProtoSCTP:
				claims[portdex.ProtocolSCTP] = claimForToken(cell)
			case colProtoDCCP:
				claims[portdex.ProtocolDCCP] = claimForToken(cell)
			case colProtocol:
				t, _ := cellText(cell)
				protocolText = t
			case colService:
				t, _ := cellText(cell)
				serviceText = t
			case colDescription:
				descCell = cell
			}
		}
		return true
	})

	if !rngValid {
		reason := "row dropped: port cell unparseable"
		if portErr != nil {
			reason = "row dropped: " + portdex.ErrorMessage(portErr)
		} else if carried {
			reason = "row dropped: inherited port cell was unparseable"
		}
		warn(reason, portSnippet)
		return nil, warnings
	}

	description, links, descRefs := p.description(descCell)
	refs = append(refs, descRefs...)

	a := &portdex.PortAssignment{
		Ports:        rng,
		Protocols:    buildProtocolClaims(lay, claims, protocolText),
		ServiceNames: serviceNames(serviceText, links, description),
		Description:  description,
		Status:       deriveStatus(claims),
		SourceRefs:   dedupe(refs),
		Links:        links,
	}
	return a, warnings
}

// claimInfo is one protocol cell's parsed token: the usage claim plus the
// authority level the token implies.
type claimInfo struct {
	claim portdex.Claim
	auth  portdex.Status
}

// claimForToken maps a protocol cell's token to a claim. Unknown tokens
// degrade to ClaimUnknown rather than aborting the row.
func claimForToken(cell *goquery.Selection) claimInfo {
	clean := cell.Clone()
	clean.Find("sup").Remove()
	token := strings.ToLower(strings.TrimSpace(clean.Text()))

	switch token {
	case "yes":
		return claimInfo{claim: portdex.ClaimUsed, auth: portdex.StatusOfficial}
	case "unofficial":
		return claimInfo{claim: portdex.ClaimUsed, auth: portdex.StatusUnofficial}
	case "assigned", "reserved":
		return claimInfo{claim: portdex.ClaimUsed, auth: portdex.StatusAssigned}
	case "no":
		return claimInfo{claim: portdex.ClaimNotUsed}
	}
	return claimInfo{claim: portdex.ClaimUnknown}
}

// buildProtocolClaims assembles the assignment's protocol set. The set is
// never empty: rows with nothing parseable get a single Unknown entry.
func buildProtocolClaims(lay layout, claims map[portdex.Protocol]claimInfo, protocolText string) []portdex.ProtocolClaim {
	var out []portdex.ProtocolClaim

	// Per-protocol columns, in the fixed protocol order.
	for _, proto := range []portdex.Protocol{portdex.ProtocolTCP, portdex.ProtocolUDP, portdex.ProtocolSCTP, portdex.ProtocolDCCP} {
		if ci, ok := claims[proto]; ok {
			out = append(out, portdex.ProtocolClaim{Protocol: proto, Claim: ci.claim})
		}
	}

	// A combined protocol column lists protocol names for one claim.
	if protocolText != "" {
		sawUnknown := false
		for _, token := range splitList(protocolText) {
			proto, err := portdex.ParseProtocol(token)
			if err != nil {
				sawUnknown = true
				continue
			}
			out = append(out, portdex.ProtocolClaim{Protocol: proto, Claim: portdex.ClaimUsed})
		}
		if sawUnknown {
			out = append(out, portdex.ProtocolClaim{Protocol: portdex.ProtocolUnknown, Claim: portdex.ClaimUsed})
		}
	}

	if len(out) == 0 {
		out = []portdex.ProtocolClaim{{Protocol: portdex.ProtocolUnknown, Claim: portdex.ClaimUnknown}}
	}
	return out
}

// deriveStatus reduces the row's per-protocol authority levels to one
// status. Disagreeing levels among used protocols mark the row conflicting.
func deriveStatus(claims map[portdex.Protocol]claimInfo) portdex.Status {
	var levels []portdex.Status
	for _, ci := range claims {
		if ci.claim != portdex.ClaimUsed {
			continue
		}
		found := false
		for _, l := range levels {
			if l == ci.auth {
				found = true
			}
		}
		if !found {
			levels = append(levels, ci.auth)
		}
	}
	switch len(levels) {
	case 0:
		return portdex.StatusUnknown
	case 1:
		return levels[0]
	default:
		return portdex.StatusConflicting
	}
}

// description renders the description cell as text and captures its inline
// links and footnote references.
func (p *Parser) description(cell *goquery.Selection) (string, []portdex.Link, []string) {
	if cell == nil {
		return "", nil, nil
	}

	clean := cell.Clone()
	refs := extractRefs(clean)

	var links []portdex.Link
	clean.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "#") {
			return
		}
		links = append(links, portdex.Link{
			Text: strings.TrimSpace(a.Text()),
			URL:  p.absolutize(href),
		})
	})

	text := ""
	if p.converter != nil {
		if inner, err := clean.Html(); err == nil {
			if md, convErr := p.converter.Convert(inner); convErr == nil {
				text = md
			}
		}
	}
	if text == "" {
		text = clean.Text()
	}
	return normalizeSpace(text), links, refs
}

// extractRefs removes footnote markers (sup elements) from a cell and
// returns their citation identifiers.
func extractRefs(cell *goquery.Selection) []string {
	var refs []string
	cell.Find("sup").Each(func(_ int, sup *goquery.Selection) {
		if href, ok := sup.Find("a[href]").First().Attr("href"); ok {
			refs = append(refs, href)
		} else if t := strings.TrimSpace(sup.Text()); t != "" {
			refs = append(refs, t)
		}
	})
	cell.Find("sup").Remove()
	return refs
}

// cellText returns a cell's text with footnote markers stripped, plus the
// stripped citation identifiers.
func cellText(cell *goquery.Selection) (string, []string) {
	clean := cell.Clone()
	refs := extractRefs(clean)
	return strings.TrimSpace(clean.Text()), refs
}

// parsePortRange recognizes single integers and A-B range notation,
// tolerating unicode dashes. Out-of-range values are rejected.
func parsePortRange(text string) (portdex.PortRange, error) {
	s := strings.ReplaceAll(text, " ", "")
	s = strings.ReplaceAll(s, "–", "-") // en dash
	s = strings.ReplaceAll(s, "—", "-") // em dash

	if s == "" {
		return portdex.PortRange{}, portdex.Errorf(portdex.EINVALID, "empty port cell")
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		l, err := parsePort(lo)
		if err != nil {
			return portdex.PortRange{}, err
		}
		h, err := parsePort(hi)
		if err != nil {
			return portdex.PortRange{}, err
		}
		r := portdex.PortRange{Lo: l, Hi: h}
		if err := r.Validate(); err != nil {
			return portdex.PortRange{}, err
		}
		return r, nil
	}

	n, err := parsePort(s)
	if err != nil {
		return portdex.PortRange{}, err
	}
	return portdex.SinglePort(n), nil
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, portdex.Errorf(portdex.EINVALID, "not a valid port number: %q", s)
	}
	return uint16(n), nil
}

// serviceNames resolves the assignment's service names: an explicit service
// column wins, then the leading link text, then the description's leading
// clause. The result is never empty.
func serviceNames(serviceText string, links []portdex.Link, description string) []string {
	if serviceText != "" {
		var names []string
		for _, part := range strings.Split(serviceText, ",") {
			if p := strings.TrimSpace(part); p != "" {
				names = append(names, p)
			}
		}
		if len(names) > 0 {
			return names
		}
	}

	if len(links) > 0 && links[0].Text != "" {
		return []string{links[0].Text}
	}

	if clause := leadingClause(description); clause != "" {
		return []string{clause}
	}

	return []string{"unknown"}
}

// leadingClause returns the description's first clause, capped at 80 runes.
func leadingClause(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".,;:("); i > 0 {
		s = s[:i]
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > 80 {
		runes = runes[:80]
	}
	return strings.TrimSpace(string(runes))
}

func (p *Parser) absolutize(href string) string {
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return p.baseURL + href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// splitList splits a multi-value cell on the known delimiters.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" && !strings.EqualFold(f, "and") {
			out = append(out, f)
		}
	}
	return out
}

// normalizeSpace trims the text and collapses runs of blank lines.
func normalizeSpace(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
