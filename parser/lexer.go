package parser

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"snapindex/util"
	"unicode"
)

type Lexer struct {
	input []rune
	index int // Position in input.
}

var (
	keywordChars = []rune{
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z',
		'_'}
	digitChars  = []rune{'1', '2', '3', '4', '5', '6', '7', '8', '9', '0'}
	numberChars = append([]rune{'.'}, digitChars...)
)

// char returns the rune at the current location or the rune '-1' if there is no next char.
func (l *Lexer) char() rune {
	if l.index >= len(l.input) {
		return -1
	}
	return l.input[l.index]
}

// nextChar returns the next rune, so the one after the rune char() returns, or the rune '-1' if there is no next char.
func (l *Lexer) nextChar() rune {
	if l.index+1 >= len(l.input) {
		return -1
	}
	return l.input[l.index+1]
}

func (l *Lexer) read() ([]*Token, error) {
	var tokens []*Token
	for l.index < len(l.input) {
		token, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if token != nil {
			l.tracef("Found token kind=%s, pos=%d, lexeme=\"%s\"", token.kind, token.startPosition, token.lexeme)
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// nextToken returns the token at or after the current index. Whitespace and commas only separate tokens. The result
// is nil when the rest of the input is a comment or whitespace.
func (l *Lexer) nextToken() (*Token, error) {
	for ; l.index < len(l.input); l.index++ {
		char := l.char()

		if unicode.IsSpace(char) || char == ',' {
			continue
		}

		// Ignore comments until next linebreak
		if char == '/' {
			err := l.skipComment()
			if err != nil {
				return nil, err
			}
			return nil, nil
		}

		switch char {
		case '(':
			return l.currentSingleCharToken(TokenKindOpeningParenthesis), nil
		case ')':
			return l.currentSingleCharToken(TokenKindClosingParenthesis), nil
		case '{':
			return l.currentSingleCharToken(TokenKindOpeningBraces), nil
		case '}':
			return l.currentSingleCharToken(TokenKindClosingBraces), nil
		case '.':
			return l.currentSingleCharToken(TokenKindExpressionSeparator), nil
		}

		if util.Contains(keywordChars, char) {
			return l.currentKeyword(), nil
		}

		// Numbers start with a digit or a minus directly followed by one
		if util.Contains(digitChars, char) || char == '-' && util.Contains(digitChars, l.nextChar()) {
			return l.currentNumber(), nil
		}

		return nil, ParsingErrorUnexpectedCharacter(l.index, char)
	}

	return nil, nil
}

func (l *Lexer) skipComment() error {
	l.tracef("Potential comment start")
	l.index++
	if l.index >= len(l.input) || l.char() != '/' {
		// Text ended or next rune is not '/'
		l.index--
		return ParsingErrorUnexpectedCharacter(l.index, l.char())
	}

	for ; l.index < len(l.input); l.index++ {
		if l.char() == '\n' || l.char() == '\r' {
			return nil
		}
	}

	l.tracef("Comment reached end of input")
	return nil
}

func (l *Lexer) currentSingleCharToken(tokenKind TokenKind) *Token {
	token := &Token{
		kind:          tokenKind,
		lexeme:        string(l.char()),
		startPosition: l.index,
	}
	l.index++
	return token
}

// currentKeyword returns the keyword starting at the current index.
func (l *Lexer) currentKeyword() *Token {
	lexeme := ""
	startIndex := l.index

	for ; l.index < len(l.input) && util.Contains(keywordChars, l.char()); l.index++ {
		lexeme += string(l.char())
	}

	return &Token{
		kind:          TokenKindKeyword,
		lexeme:        lexeme,
		startPosition: startIndex,
	}
}

// currentNumber returns the number starting at the current index, including a leading minus. Whether the lexeme is
// a valid number is up to the parser.
func (l *Lexer) currentNumber() *Token {
	lexeme := string(l.char())
	startIndex := l.index
	l.index++

	for ; l.index < len(l.input); l.index++ {
		char := l.char()
		if !util.Contains(numberChars, char) {
			break
		}
		// A '.' not followed by a digit separates the number from a filter, as in "vertex(1 2 3).exclude{4}"
		if char == '.' && !util.Contains(digitChars, l.nextChar()) {
			break
		}
		lexeme += string(char)
	}

	return &Token{
		kind:          TokenKindNumber,
		lexeme:        lexeme,
		startPosition: startIndex,
	}
}

func (l *Lexer) tracef(format string, args ...any) {
	formattedMessage := format
	if len(args) > 0 {
		formattedMessage = fmt.Sprintf(format, args...)
	}
	sigolo.Traceb(1, "[%d, %q] %s", l.index, l.char(), formattedMessage)
}
