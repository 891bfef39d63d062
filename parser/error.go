package parser

import (
	"fmt"
	"runtime"
	"strings"
)

type stack *[]uintptr

// getCurrentStack creates a new stack without the frames of this function and the error constructor.
func getCurrentStack() stack {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st = pcs[0:n]
	return &st
}

func getPrintableStackTrace(stack stack) string {
	var sb strings.Builder

	for _, pc := range *stack {
		f := runtime.FuncForPC(pc)
		file, line := f.FileLine(pc)
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", f.Name(), file, line))
	}

	return sb.String()
}

// ParsingError describes what went wrong at which rune position of a probe text. With %v, the stack of the place
// creating the error is printed as well.
type ParsingError struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Lexeme   string `json:"lexeme,omitempty"`
	stack    stack
}

func newParsingError(position int, lexeme string, format string, args ...any) *ParsingError {
	return &ParsingError{
		Message:  fmt.Sprintf("Parsing error: "+format, args...),
		Position: position,
		Lexeme:   lexeme,
		stack:    getCurrentStack(),
	}
}

// ParsingErrorExpectedButFound models a typical "Expected foo but found bar" kind of error.
func ParsingErrorExpectedButFound(expectedMessage string, token *Token) *ParsingError {
	return newParsingError(token.startPosition, token.lexeme, "Expected %s at position %d but found '%s' of kind %s.", expectedMessage, token.startPosition, token.lexeme, token.kind.String())
}

// ParsingErrorExpectedTokenKind is ParsingErrorExpectedButFound for a specific wanted token kind.
func ParsingErrorExpectedTokenKind(token *Token, expectedKind TokenKind) *ParsingError {
	return newParsingError(token.startPosition, token.lexeme, "Expected '%s' (%s) at position %d but found '%s' of kind %s.", expectedKind.Lexeme(), expectedKind.String(), token.startPosition, token.lexeme, token.kind.String())
}

func ParsingErrorTokenStreamEnded(position int, expectedMessage string) *ParsingError {
	return newParsingError(position, "", "Probe ended at position %d, expected %s.", position, expectedMessage)
}

func ParsingErrorUnexpectedCharacter(position int, char rune) *ParsingError {
	return newParsingError(position, string(char), "Unexpected character '%c' at position %d.", char, position)
}

func (e *ParsingError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		fmt.Fprintf(s, "%s\n%s", e.Error(), getPrintableStackTrace(e.stack))
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	}
}

func (e *ParsingError) Error() string {
	return e.Message
}
