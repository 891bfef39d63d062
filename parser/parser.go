package parser

import (
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"snapindex/feature"
	"snapindex/query"
	"strconv"
	"strings"
)

var (
	probeKinds = map[string]query.ProbeKind{
		"vertex": query.ProbeKindVertex,
		"edge":   query.ProbeKindEdge,
		"area":   query.ProbeKindArea,
		"rect":   query.ProbeKindRect,
		"pip":    query.ProbeKindPointInPolygon,
	}

	featureExclusionFilterExpression = "exclude"
	pointExclusionFilterExpression   = "notat"
)

type Parser struct {
	token []*Token
	index int
}

// ParseQueryString turns a probe text like "vertex(1.5 2 0.5).exclude{3}" into a query. A text may contain several
// probes, each one is executed on its own.
func ParseQueryString(queryString string) (*query.Query, error) {
	runes := []rune(strings.Trim(queryString, "\n\r\t "))
	lexer := Lexer{
		input: runes,
		index: 0,
	}

	token, err := lexer.read()
	if err != nil {
		return nil, err
	}

	sigolo.Tracef("Found %d token", len(token))

	parser := Parser{
		token: token,
		index: 0,
	}
	return parser.parse()
}

func (p *Parser) moveToNextToken() *Token {
	p.index++
	sigolo.Tracef("Moved to next token: %+v", p.currentToken())
	return p.currentToken()
}

func (p *Parser) peekNextToken() *Token {
	if p.index+1 >= len(p.token) {
		return nil
	}
	return p.token[p.index+1]
}

func (p *Parser) hasNextToken() bool {
	return p.peekNextToken() != nil
}

func (p *Parser) getNextTokenStartPosition() int {
	if p.hasNextToken() {
		return p.peekNextToken().startPosition
	} else if p.currentToken() != nil {
		// No next token, so the start position of this hypothetical next token is right behind the current one.
		return p.currentToken().startPosition + len(p.currentToken().lexeme)
	} else if len(p.token) > 0 {
		lastToken := p.token[len(p.token)-1]
		return lastToken.startPosition + len(lastToken.lexeme)
	}
	return 0
}

func (p *Parser) currentToken() *Token {
	if p.index >= len(p.token) {
		return nil
	}
	return p.token[p.index]
}

func (p *Parser) parse() (*query.Query, error) {
	if len(p.token) == 0 {
		return nil, ParsingErrorTokenStreamEnded(0, "probe keyword")
	}

	var probes []*query.Probe
	for p.currentToken() != nil {
		probe, err := p.parseProbe()
		if err != nil {
			return nil, err
		}
		probes = append(probes, probe)
	}

	return query.NewQuery(probes), nil
}

// parseProbe parses a probe with all its filters. Afterward, the current token is the first one after the probe.
func (p *Parser) parseProbe() (*query.Probe, error) {
	token := p.currentToken()
	kind, ok := probeKinds[token.lexeme]
	if token.kind != TokenKindKeyword || !ok {
		return nil, ParsingErrorExpectedButFound("probe keyword (vertex, edge, area, rect or pip)", token)
	}

	if !p.hasNextToken() {
		return nil, ParsingErrorTokenStreamEnded(p.getNextTokenStartPosition(), "'('")
	}
	p.moveToNextToken()
	arguments, err := p.parseNumbers(TokenKindOpeningParenthesis, TokenKindClosingParenthesis)
	if err != nil {
		return nil, err
	}

	probe, err := p.newProbe(token, kind, arguments)
	if err != nil {
		return nil, err
	}

	token = p.moveToNextToken()
	for token != nil && token.kind == TokenKindExpressionSeparator {
		if !p.hasNextToken() {
			return nil, ParsingErrorTokenStreamEnded(p.getNextTokenStartPosition(), "filter keyword")
		}
		p.moveToNextToken()

		filter, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		probe.AddFilter(filter)

		token = p.moveToNextToken()
	}

	return probe, nil
}

func (p *Parser) newProbe(keywordToken *Token, kind query.ProbeKind, arguments []float64) (*query.Probe, error) {
	switch {
	case kind == query.ProbeKindPointInPolygon && len(arguments) == 2:
		return query.NewPointProbe(kind, orb.Point{arguments[0], arguments[1]}, 0), nil
	case kind == query.ProbeKindRect && len(arguments) == 4:
		return query.NewRectProbe(orb.Bound{
			Min: orb.Point{arguments[0], arguments[1]},
			Max: orb.Point{arguments[2], arguments[3]},
		}), nil
	case kind != query.ProbeKindPointInPolygon && len(arguments) == 3:
		if arguments[2] < 0 {
			return nil, ParsingErrorExpectedButFound("non-negative tolerance", p.currentToken())
		}
		return query.NewPointProbe(kind, orb.Point{arguments[0], arguments[1]}, arguments[2]), nil
	}

	expected := "x, y and tolerance"
	if kind == query.ProbeKindPointInPolygon {
		expected = "x and y"
	} else if kind == query.ProbeKindRect {
		expected = "x, y and tolerance or min x, min y, max x and max y"
	}
	return nil, newParsingError(keywordToken.startPosition, keywordToken.lexeme, "Probe '%s' at position %d expects %s as arguments but got %d numbers.", keywordToken.lexeme, keywordToken.startPosition, expected, len(arguments))
}

// parseFilter parses a filter expression such as "exclude{1 2}" or "notat(3 4)" starting at the current token.
// Afterward, the current token is the closing brace or parenthesis.
func (p *Parser) parseFilter() (query.Filter, error) {
	token := p.currentToken()
	if token.kind != TokenKindKeyword {
		return nil, ParsingErrorExpectedButFound("filter keyword", token)
	}

	switch token.lexeme {
	case featureExclusionFilterExpression:
		if !p.hasNextToken() {
			return nil, ParsingErrorTokenStreamEnded(p.getNextTokenStartPosition(), "'{'")
		}
		p.moveToNextToken()
		lexemes, err := p.parseNumberLexemes(TokenKindOpeningBraces, TokenKindClosingBraces)
		if err != nil {
			return nil, err
		}

		var ids []feature.ID
		for _, idToken := range lexemes {
			id, err := strconv.ParseUint(idToken.lexeme, 10, 64)
			if err != nil {
				return nil, ParsingErrorExpectedButFound("feature ID", idToken)
			}
			ids = append(ids, feature.ID(id))
		}
		return query.NewFeatureExclusionFilter(ids...), nil
	case pointExclusionFilterExpression:
		if !p.hasNextToken() {
			return nil, ParsingErrorTokenStreamEnded(p.getNextTokenStartPosition(), "'('")
		}
		p.moveToNextToken()
		coordinates, err := p.parseNumbers(TokenKindOpeningParenthesis, TokenKindClosingParenthesis)
		if err != nil {
			return nil, err
		}
		if len(coordinates) != 2 {
			return nil, newParsingError(token.startPosition, token.lexeme, "Filter '%s' at position %d expects x and y but got %d numbers.", token.lexeme, token.startPosition, len(coordinates))
		}
		return query.NewPointExclusionFilter(orb.Point{coordinates[0], coordinates[1]}), nil
	}

	return nil, ParsingErrorExpectedButFound("filter keyword (exclude or notat)", token)
}

func (p *Parser) parseNumbers(openingKind TokenKind, closingKind TokenKind) ([]float64, error) {
	lexemes, err := p.parseNumberLexemes(openingKind, closingKind)
	if err != nil {
		return nil, err
	}

	var numbers []float64
	for _, token := range lexemes {
		value, err := strconv.ParseFloat(token.lexeme, 64)
		if err != nil {
			return nil, ParsingErrorExpectedButFound("number", token)
		}
		numbers = append(numbers, value)
	}
	return numbers, nil
}

// parseNumberLexemes collects the number tokens between the opening token (the current one) and the closing token.
// Afterward, the current token is the closing token.
func (p *Parser) parseNumberLexemes(openingKind TokenKind, closingKind TokenKind) ([]*Token, error) {
	token := p.currentToken()
	if token.kind != openingKind {
		return nil, ParsingErrorExpectedTokenKind(token, openingKind)
	}

	var numberTokens []*Token
	for {
		if !p.hasNextToken() {
			return nil, ParsingErrorTokenStreamEnded(p.getNextTokenStartPosition(), "'"+closingKind.Lexeme()+"'")
		}
		token = p.moveToNextToken()

		if token.kind == closingKind {
			return numberTokens, nil
		}
		if token.kind != TokenKindNumber {
			return nil, ParsingErrorExpectedButFound("number or '"+closingKind.Lexeme()+"'", token)
		}
		numberTokens = append(numberTokens, token)
	}
}
