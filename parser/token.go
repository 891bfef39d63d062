package parser

import (
	"fmt"
)

type TokenKind int

const (
	TokenKindUnknown TokenKind = iota

	TokenKindKeyword
	TokenKindNumber

	TokenKindExpressionSeparator

	TokenKindOpeningParenthesis
	TokenKindClosingParenthesis
	TokenKindOpeningBraces
	TokenKindClosingBraces
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindUnknown:
		return "TokenKindUnknown"
	case TokenKindKeyword:
		return "TokenKindKeyword"
	case TokenKindNumber:
		return "TokenKindNumber"
	case TokenKindExpressionSeparator:
		return "TokenKindExpressionSeparator"
	case TokenKindOpeningParenthesis:
		return "TokenKindOpeningParenthesis"
	case TokenKindClosingParenthesis:
		return "TokenKindClosingParenthesis"
	case TokenKindOpeningBraces:
		return "TokenKindOpeningBraces"
	case TokenKindClosingBraces:
		return "TokenKindClosingBraces"
	}
	return fmt.Sprintf("!! INVALID TOKEN KIND %d !!", k)
}

// Lexeme returns how a token of this kind looks like in a probe text, used in error messages.
func (k TokenKind) Lexeme() string {
	switch k {
	case TokenKindUnknown:
		return "UNKNOWN"
	case TokenKindKeyword:
		return "keyword"
	case TokenKindNumber:
		return "number"
	case TokenKindExpressionSeparator:
		return "."
	case TokenKindOpeningParenthesis:
		return "("
	case TokenKindClosingParenthesis:
		return ")"
	case TokenKindOpeningBraces:
		return "{"
	case TokenKindClosingBraces:
		return "}"
	}
	return fmt.Sprintf("!! INVALID TOKEN KIND %d !!", k)
}

type Token struct {
	kind          TokenKind
	lexeme        string
	startPosition int
}
