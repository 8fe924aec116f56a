package parser

import (
	"fmt"
	"strings"
)

// TokenType defines the type of lexical tokens.
type TokenType int

const (
	TokEOF        TokenType = iota // EOF
	TokNumber                      // 123, 3.14
	TokString                      // "hello"
	TokIdentifier                  // foo, bar
	TokBool                        // true, false
	TokNull                        // null
	TokLParen                      // (
	TokRParen                      // )
	TokLBrace                      // {
	TokRBrace                      // }
	TokLBracket                    // [
	TokRBracket                    // ]
	TokSemicolon                   // ;
	TokQuestion                    // ?
	TokColon                       // :
	TokComma                       // ,
	TokDot                         // .
	TokEllipsis                    // ...
	TokArrow                       // =>

	// assignment
	TokAssign         // =
	TokPlusAssign     // +=
	TokMinusAssign    // -=
	TokAsteriskAssign // *=
	TokSlashAssign    // /=
	TokRemAssign      // %=
	TokShlAssign      // <<=
	TokShrAssign      // >>=
	TokUshrAssign     // >>>=
	TokAndAssign      // &=
	TokOrAssign       // |=
	TokXorAssign      // ^=

	// operators
	TokEqual          // ==
	TokNotEqual       // !=
	TokStrictEqual    // ===
	TokNotStrictEqual // !==
	TokPlus           // +
	TokMinus          // -
	TokAsterisk       // *
	TokSlash          // /
	TokRem            // %
	TokInc            // ++
	TokDec            // --
	TokLT             // <
	TokLTE            // <=
	TokGT             // >
	TokGTE            // >=
	TokLogicalAnd     // &&
	TokLogicalOr      // ||
	TokLogicalNot     // !
	TokShl            // <<
	TokShr            // >>
	TokUshr           // >>>
	TokAnd            // &
	TokOr             // |
	TokXor            // ^

	// keywords
	TokIf       // if
	TokElse     // else
	TokWhile    // while
	TokFor      // for
	TokFunction // function
	TokReturn   // return
	TokVar      // var
	TokLet      // let
	TokConst    // const
	TokThrow    // throw
	TokTry      // try
	TokCatch    // catch
	TokFinally  // finally
	TokBreak    // break
	TokContinue // continue
	TokThis     // this
	TokTypeof   // typeof
)

var tokenNames = map[TokenType]string{
	TokEOF: "EOF", TokNumber: "Number", TokString: "String", TokIdentifier: "Identifier",
	TokBool: "Bool", TokNull: "Null",
	TokLParen: "(", TokRParen: ")", TokLBrace: "{", TokRBrace: "}", TokLBracket: "[", TokRBracket: "]",
	TokSemicolon: ";", TokQuestion: "?", TokColon: ":", TokComma: ",", TokDot: ".", TokEllipsis: "...",
	TokArrow: "=>",
	TokAssign: "=", TokPlusAssign: "+=", TokMinusAssign: "-=", TokAsteriskAssign: "*=",
	TokSlashAssign: "/=", TokRemAssign: "%=", TokShlAssign: "<<=", TokShrAssign: ">>=",
	TokUshrAssign: ">>>=", TokAndAssign: "&=", TokOrAssign: "|=", TokXorAssign: "^=",
	TokEqual: "==", TokNotEqual: "!=", TokStrictEqual: "===", TokNotStrictEqual: "!==",
	TokPlus: "+", TokMinus: "-", TokAsterisk: "*", TokSlash: "/", TokRem: "%", TokInc: "++", TokDec: "--",
	TokLT: "<", TokLTE: "<=", TokGT: ">", TokGTE: ">=",
	TokLogicalAnd: "&&", TokLogicalOr: "||", TokLogicalNot: "!",
	TokShl: "<<", TokShr: ">>", TokUshr: ">>>", TokAnd: "&", TokOr: "|", TokXor: "^",
	TokIf: "if", TokElse: "else", TokWhile: "while", TokFor: "for", TokFunction: "function",
	TokReturn: "return", TokVar: "var", TokLet: "let", TokConst: "const", TokThrow: "throw",
	TokTry: "try", TokCatch: "catch", TokFinally: "finally", TokBreak: "break",
	TokContinue: "continue", TokThis: "this", TokTypeof: "typeof",
}

var keywords = map[string]TokenType{
	"true": TokBool, "false": TokBool, "null": TokNull,
	"if": TokIf, "else": TokElse, "while": TokWhile, "for": TokFor, "function": TokFunction,
	"return": TokReturn, "var": TokVar, "let": TokLet, "const": TokConst, "throw": TokThrow,
	"try": TokTry, "catch": TokCatch, "finally": TokFinally, "break": TokBreak,
	"continue": TokContinue, "this": TokThis, "typeof": TokTypeof,
}

// operators ordered longest first so that "===" wins over "==" and "=".
var operators = []struct {
	lit string
	typ TokenType
}{
	{">>>=", TokUshrAssign},
	{"===", TokStrictEqual}, {"!==", TokNotStrictEqual}, {"...", TokEllipsis},
	{">>>", TokUshr}, {"<<=", TokShlAssign}, {">>=", TokShrAssign},
	{"=>", TokArrow}, {"<<", TokShl}, {">>", TokShr},
	{"&=", TokAndAssign}, {"|=", TokOrAssign}, {"^=", TokXorAssign}, {"==", TokEqual}, {"!=", TokNotEqual}, {"<=", TokLTE}, {">=", TokGTE},
	{"&&", TokLogicalAnd}, {"||", TokLogicalOr}, {"++", TokInc}, {"--", TokDec},
	{"+=", TokPlusAssign}, {"-=", TokMinusAssign}, {"*=", TokAsteriskAssign},
	{"/=", TokSlashAssign}, {"%=", TokRemAssign},
	{"(", TokLParen}, {")", TokRParen}, {"{", TokLBrace}, {"}", TokRBrace},
	{"[", TokLBracket}, {"]", TokRBracket}, {";", TokSemicolon}, {"?", TokQuestion},
	{":", TokColon}, {",", TokComma}, {".", TokDot}, {"=", TokAssign},
	{"+", TokPlus}, {"-", TokMinus}, {"*", TokAsterisk}, {"/", TokSlash}, {"%", TokRem},
	{"<", TokLT}, {">", TokGT}, {"!", TokLogicalNot},
	{"&", TokAnd}, {"|", TokOr}, {"^", TokXor},
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Tokenize splits input into tokens.
func Tokenize(input string) ([]Token, error) {
	tokens := []Token{}
	lineNum, lineStart := 1, 0
	emit := func(typ TokenType, lit string, at int) {
		tokens = append(tokens, Token{Type: typ, Literal: lit, Line: lineNum, Col: at - lineStart})
	}
	for i := 0; i < len(input); {
		ch := input[i]
		if isSpace(ch) {
			if ch == '\n' {
				lineNum++
				lineStart = i + 1
			}
			i++
			continue
		}
		// single-line comment
		if strings.HasPrefix(input[i:], "//") {
			for i < len(input) && input[i] != '\n' {
				i++
			}
			continue
		}
		// multi-line comment
		if strings.HasPrefix(input[i:], "/*") {
			end := strings.Index(input[i+2:], "*/")
			if end < 0 {
				return tokens, fmt.Errorf("line %d: unterminated comment", lineNum)
			}
			body := input[i : i+2+end+2]
			if n := strings.Count(body, "\n"); n > 0 {
				lineNum += n
				lineStart = i + strings.LastIndex(body, "\n") + 1
			}
			i += len(body)
			continue
		}
		if isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])) {
			start := i
			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				i++
			}
			emit(TokNumber, input[start:i], start)
			continue
		}
		if isIdentBegin(ch) {
			start := i
			i++
			for i < len(input) && isIdentContinue(input[i]) {
				i++
			}
			lit := input[start:i]
			if kw, ok := keywords[lit]; ok {
				emit(kw, lit, start)
			} else {
				emit(TokIdentifier, lit, start)
			}
			continue
		}
		if ch == '"' || ch == '\'' {
			start := i
			lit, n, err := readString(input[i:])
			if err != nil {
				return tokens, fmt.Errorf("line %d: %w", lineNum, err)
			}
			emit(TokString, lit, start)
			i += n
			continue
		}
		matched := false
		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.lit) {
				emit(op.typ, op.lit, i)
				i += len(op.lit)
				matched = true
				break
			}
		}
		if !matched {
			return tokens, fmt.Errorf("line %d: unexpected character: %c", lineNum, ch)
		}
	}
	emit(TokEOF, "", len(input))
	return tokens, nil
}

// readString reads a quoted literal at the start of s and returns the decoded
// text and the number of bytes consumed.
func readString(s string) (string, int, error) {
	quote := s[0]
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == quote:
			return sb.String(), i + 1, nil
		case ch == '\n':
			return "", 0, fmt.Errorf("unterminated string")
		case ch == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			default:
				sb.WriteByte(s[i])
			}
		default:
			sb.WriteByte(ch)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// helpers
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t' || ch == '\f' || ch == '\v'
}
func isDigit(ch byte) bool         { return ch >= '0' && ch <= '9' }
func isAlpha(ch byte) bool         { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isIdentBegin(ch byte) bool    { return ch == '_' || ch == '$' || isAlpha(ch) }
func isIdentContinue(ch byte) bool { return isIdentBegin(ch) || isDigit(ch) }
