package css

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into a mutable document tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// parseState keeps everything related to a single Parse call. Blocks of
// unknown at-rules are parsed again with their own state, base is offset of
// such block in data.
type parseState struct {
	data   []byte
	base   int
	input  *parse.Input
	parser *css.Parser
	loc    locator
	sheet  *Stylesheet
}

// Parse parses CSS text into a Stylesheet. Parsing never fails, malformed
// input is skipped and reported in Stylesheet.Warnings.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]Item, 0),
		Warnings: make([]string, 0),
	}

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInputBytes(data)
	st := &parseState{
		data:   data,
		input:  input,
		parser: css.NewParser(input, false),
		loc:    locator{data: data, line: 1, col: 1},
		sheet:  sheet,
	}

	sheet.Items = p.parseBlock(st, false).items
	return sheet
}

// block is content of a stylesheet or a {} block.
type block struct {
	items []Item
	decls []*Declaration
	raw   strings.Builder // verbatim content of at-rules with unknown grammar
	end   int             // offset of closing brace or end of input
}

// parseBlock collects items and declarations until the end of the current
// block (or end of input when not nested).
func (p *Parser) parseBlock(st *parseState, nested bool) *block {
	var (
		b        = &block{}
		selector []string
		selPos   Position
	)

	for {
		start := st.input.Offset()
		gt, _, data := st.parser.Next()

		switch gt {
		case css.ErrorGrammar:
			err := st.parser.Err()
			if err == io.EOF {
				b.end = start
				return b
			}
			if st.parser.HasParseError() {
				// recoverable, parser skipped malformed construct
				p.warn(st, start, err.Error())
				continue
			}
			p.log.Debug("CSS read error", zap.Error(err))
			p.warn(st, start, "CSS read error: "+err.Error())
			return b

		case css.CommentGrammar:
			continue

		case css.AtRuleGrammar:
			at := &AtRule{
				Name:   strings.TrimPrefix(string(data), "@"),
				Params: joinTokens(st.parser.Values(), textParams),
				Pos:    st.position(start),
			}
			if strings.EqualFold(at.Name, "charset") {
				// output is always UTF-8
				p.log.Debug("Dropping @charset", zap.String("charset", at.Params))
				continue
			}
			b.items = append(b.items, Item{AtRule: at})

		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:   strings.TrimPrefix(string(data), "@"),
				Params: joinTokens(st.parser.Values(), textParams),
				Block:  true,
				Pos:    st.position(start),
			}
			content := st.input.Offset()
			inner := p.parseBlock(st, true)
			at.Items, at.Declarations = inner.items, inner.decls
			at.Raw = strings.TrimSpace(inner.raw.String())
			if strings.Contains(at.Raw, "{") {
				p.parseNestedRules(st, at, content, inner.end)
			}
			b.items = append(b.items, Item{AtRule: at})

		case css.QualifiedRuleGrammar:
			if len(selector) == 0 {
				selPos = st.position(start)
			}
			selector = append(selector, selectorText(data, st.parser.Values()))

		case css.BeginRulesetGrammar:
			if len(selector) == 0 {
				selPos = st.position(start)
			}
			selector = append(selector, selectorText(data, st.parser.Values()))
			rule := &Rule{Selector: strings.Join(selector, ", "), Pos: selPos}
			inner := p.parseBlock(st, true)
			rule.Declarations = inner.decls
			if len(inner.items) > 0 {
				p.warn(st, start, "nested rules are not supported: "+rule.Selector)
			}
			b.items = append(b.items, Item{Rule: rule})
			selector = nil

		case css.DeclarationGrammar:
			decl := &Declaration{
				Property: strings.ToLower(string(data)),
				Pos:      st.position(start),
			}
			decl.Value, decl.Important = declarationValue(st.parser.Values())
			b.decls = append(b.decls, decl)

		case css.CustomPropertyGrammar:
			decl := &Declaration{
				Property: string(data),
				Pos:      st.position(start),
			}
			var sb strings.Builder
			for _, t := range st.parser.Values() {
				sb.Write(t.Data)
			}
			decl.Value = strings.TrimSpace(sb.String())
			b.decls = append(b.decls, decl)

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if nested {
				b.end = start
				return b
			}
			p.warn(st, start, "unexpected end of block")

		case css.TokenGrammar:
			if nested {
				b.raw.Write(data)
			}

		default:
			p.log.Debug("Skipping CSS grammar", zap.Stringer("grammar", gt), zap.ByteString("data", data))
		}
	}
}

// parseNestedRules parses block content of at-rule with unknown grammar
// (@container, @scope, @starting-style) as a list of rules. Content which
// does not parse cleanly is kept verbatim.
func (p *Parser) parseNestedRules(st *parseState, at *AtRule, start, end int) {
	// capped slice, input appends terminating zero and must not overwrite data
	input := parse.NewInputBytes(st.data[st.base+start : st.base+end : st.base+end])
	sub := &parseState{
		data:   st.data,
		base:   st.base + start,
		input:  input,
		parser: css.NewParser(input, false),
		loc:    locator{data: st.data, line: 1, col: 1},
		sheet:  &Stylesheet{},
	}
	items := p.parseBlock(sub, false).items
	if len(sub.sheet.Warnings) > 0 || !plainRules(items) {
		p.warn(st, start, "block of @"+at.Name+" kept verbatim, rules inside are not parsed")
		return
	}
	at.Items, at.Raw = items, ""
}

// plainRules reports whether items look like a rule list. Declarations
// mixed with rules end up in selectors.
func plainRules(items []Item) bool {
	for _, item := range items {
		if item.Rule != nil && strings.ContainsAny(item.Rule.Selector, ";{}") {
			return false
		}
	}
	return true
}

// warn records warning with source location of offset.
func (p *Parser) warn(st *parseState, offset int, msg string) {
	line, col, _ := parse.Position(bytes.NewReader(st.data), st.base+offset)
	st.sheet.Warnings = append(st.sheet.Warnings, Position{Line: line, Column: col}.String()+": "+msg)
	p.log.Debug("CSS warning", zap.Int("line", line), zap.Int("column", col), zap.String("warning", msg))
}

// position returns location of the first non-space byte at or after offset.
func (st *parseState) position(offset int) Position {
	offset += st.base
	for offset < len(st.data) && isSpace(st.data[offset]) {
		offset++
	}
	return st.loc.at(offset)
}

// locator converts byte offsets to line/column. Offsets are expected to grow
// monotonically, otherwise scanning restarts from the beginning.
type locator struct {
	data      []byte
	off       int
	line, col int
}

func (l *locator) at(offset int) Position {
	if offset < l.off {
		l.off, l.line, l.col = 0, 1, 1
	}
	for l.off < offset && l.off < len(l.data) {
		r, n := utf8.DecodeRune(l.data[l.off:])
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.off += n
	}
	return Position{Line: l.line, Column: l.col}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// selectorText builds selector string from grammar data and values.
func selectorText(data []byte, values []css.Token) string {
	tokens := values
	if len(data) > 0 {
		tokens = append([]css.Token{{TokenType: css.IdentToken, Data: data}}, values...)
	}
	return joinTokens(tokens, textSelector)
}

// declarationValue converts value tokens to raw value string stripping
// trailing "!important".
func declarationValue(tokens []css.Token) (string, bool) {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}

	important := false
	if end > 0 && tokens[end-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[end-1].Data), "important") {
		bang := end - 2
		for bang >= 0 && tokens[bang].TokenType == css.WhitespaceToken {
			bang--
		}
		if bang >= 0 && tokens[bang].TokenType == css.DelimToken && string(tokens[bang].Data) == "!" {
			important = true
			end = bang
		}
	}
	return joinTokens(tokens[:end], textValue), important
}

type textMode int

const (
	textValue textMode = iota
	textParams
	textSelector
)

// joinTokens builds normalized text from tokens. Comments are dropped and
// whitespace runs collapse to single space. Commas are always followed by
// space, colons inside parentheses of at-rule preludes as well. Selector
// combinators are surrounded by spaces.
func joinTokens(tokens []css.Token, mode textMode) string {
	var (
		sb    strings.Builder
		space bool // space pending before next token
		glued bool // last token opened a group
		level int
	)
	write := func(s string) {
		if space && !glued && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
		space, glued = false, false
	}

	for _, t := range tokens {
		switch t.TokenType {
		case css.CommentToken:
		case css.WhitespaceToken:
			space = true
		case css.CommaToken:
			space = false
			write(",")
			space = true
		case css.ColonToken:
			write(":")
			space = mode == textParams && level > 0
		case css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken, css.LeftBraceToken:
			write(string(t.Data))
			glued = true
			level++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			space = false
			write(string(t.Data))
			level--
		case css.DelimToken:
			d := string(t.Data)
			if mode == textSelector && level == 0 && (d == ">" || d == "+" || d == "~") {
				space = true
				write(d)
				space = true
				continue
			}
			write(d)
		default:
			write(string(t.Data))
		}
	}
	return sb.String()
}
