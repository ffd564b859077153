package mock

import "github.com/portdex/portdex"

var _ portdex.Parser = (*Parser)(nil)

// Parser is a mock implementation of portdex.Parser.
type Parser struct {
	ParseFn func(html string) ([]*portdex.PortAssignment, []portdex.ParseWarning, error)
}

func (p *Parser) Parse(html string) ([]*portdex.PortAssignment, []portdex.ParseWarning, error) {
	return p.ParseFn(html)
}

var _ portdex.Converter = (*Converter)(nil)

// Converter is a mock implementation of portdex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
