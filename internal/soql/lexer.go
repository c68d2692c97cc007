package soql

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a lexed region of query text.
type Kind int

const (
	Punct Kind = iota
	Whitespace
	Ident
	String
	LineComment
	BlockComment
	Placeholder
	Wildcard
)

var kindNames = map[Kind]string{
	Punct:        "Punct",
	Whitespace:   "Whitespace",
	Ident:        "Ident",
	String:       "String",
	LineComment:  "LineComment",
	BlockComment: "BlockComment",
	Placeholder:  "Placeholder",
	Wildcard:     "Wildcard",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsComment reports whether the region is a line or block comment.
func (k Kind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// Token is one lexed region. Start and End are byte offsets into the lexed text.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// The rules are tried in order at every position, so the literal and comment
// forms win over everything that could otherwise match inside them.
var soqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^'\\]|\\(?s:.))*'`},
	{Name: "OpenString", Pattern: `'(?s:.*)`},
	{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`},
	{Name: "OpenBlockComment", Pattern: `/\*(?s:.*)`},
	{Name: "LineComment", Pattern: `--[^\r\n]*`},
	{Name: "Placeholder", Pattern: `\[\w+\]`},
	{Name: "Wildcard", Pattern: `\w+\s*\.\s*\*`},
	{Name: "Ident", Pattern: `\w+`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `(?s:.)`},
})

var (
	tokenKinds  = map[lexer.TokenType]Kind{}
	openString  lexer.TokenType
	openComment lexer.TokenType
)

func init() {
	symbols := soqlLexer.Symbols()
	for kind, name := range kindNames {
		tokenKinds[symbols[name]] = kind
	}
	openString = symbols["OpenString"]
	openComment = symbols["OpenBlockComment"]
}

// Lex splits text into regions covering it completely and in order.
// An unterminated string literal or block comment is a *ParseError.
func Lex(text string) ([]Token, error) {
	lex, err := soqlLexer.LexString("", text)
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		switch t.Type {
		case lexer.EOF:
			continue
		case openString:
			return nil, &ParseError{Offset: t.Pos.Offset, Msg: "unterminated string literal"}
		case openComment:
			return nil, &ParseError{Offset: t.Pos.Offset, Msg: "unterminated block comment"}
		}
		tokens = append(tokens, Token{
			Kind:  tokenKinds[t.Type],
			Text:  t.Value,
			Start: t.Pos.Offset,
			End:   t.Pos.Offset + len(t.Value),
		})
	}
	return tokens, nil
}

// ParseError reports query text that cannot be split into regions.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}
