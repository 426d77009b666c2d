// Package phpdoc parses PHP documentation comments into a summary, a
// description and an ordered list of tags.
package phpdoc

import (
	"strings"
)

// Doc is a parsed documentation comment
type Doc struct {
	Summary     string
	Description string
	Tags        []Tag
}

// Tag is a single @tag line. Which fields are set depends on the tag:
// @param, @var and @property carry Type and Variable; @return carries Type;
// @method carries Type (return type), Method, Static and Params.
type Tag struct {
	Name        string
	Type        string
	Variable    string
	Method      string
	Static      bool
	Params      []Param
	Description string
}

// Param is a parameter of a @method tag
type Param struct {
	Type     string
	Name     string
	Variadic bool
}

// IsDocComment reports whether text is a /** ... */ comment
func IsDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/**/")
}

// Parse parses a documentation comment. Text that is not a doc comment
// yields an empty Doc.
func Parse(text string) *Doc {
	doc := &Doc{}
	if !IsDocComment(text) {
		return doc
	}

	var (
		prose []string
		cur   *strings.Builder
		name  string
	)
	flush := func() {
		if cur != nil {
			doc.Tags = append(doc.Tags, parseTag(name, strings.TrimSpace(cur.String())))
			cur = nil
		}
	}

	for _, line := range lines(text) {
		if strings.HasPrefix(line, "@") {
			flush()
			name, line = splitWord(line[1:])
			cur = &strings.Builder{}
			cur.WriteString(line)
			continue
		}
		if cur != nil {
			if line != "" {
				cur.WriteByte(' ')
				cur.WriteString(line)
			}
			continue
		}
		prose = append(prose, line)
	}
	flush()

	doc.Summary, doc.Description = splitProse(prose)
	return doc
}

// Tag returns the first tag called name
func (d *Doc) Tag(name string) (Tag, bool) {
	for _, t := range d.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// TagsNamed returns every tag called one of names, in order
func (d *Doc) TagsNamed(names ...string) []Tag {
	var out []Tag
	for _, t := range d.Tags {
		for _, n := range names {
			if t.Name == n {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Param returns the @param tag for variable name ($ included)
func (d *Doc) Param(name string) (Tag, bool) {
	for _, t := range d.Tags {
		if t.Name == "param" && t.Variable == name {
			return t, true
		}
	}
	return Tag{}, false
}

// lines strips the comment delimiters and the leading asterisks
func lines(text string) []string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		out = append(out, strings.TrimSpace(l))
	}
	return out
}

// splitProse separates the summary (first paragraph) from the description
func splitProse(prose []string) (string, string) {
	for len(prose) > 0 && prose[0] == "" {
		prose = prose[1:]
	}
	end := 0
	for end < len(prose) && prose[end] != "" {
		end++
	}
	summary := strings.Join(prose[:end], " ")

	rest := prose[end:]
	for len(rest) > 0 && rest[0] == "" {
		rest = rest[1:]
	}
	for len(rest) > 0 && rest[len(rest)-1] == "" {
		rest = rest[:len(rest)-1]
	}
	return summary, strings.Join(rest, "\n")
}

func parseTag(name, body string) Tag {
	tag := Tag{Name: name}
	switch name {
	case "param", "var", "property", "property-read", "property-write":
		tokens := Tokenize(body)
		if len(tokens) > 0 && !isVariable(tokens[0]) {
			tag.Type = tokens[0]
			tokens = tokens[1:]
		}
		if len(tokens) > 0 && isVariable(tokens[0]) {
			tag.Variable = strings.TrimLeft(tokens[0], "&.")
			tokens = tokens[1:]
		}
		tag.Description = strings.Join(tokens, " ")
	case "return", "throws":
		tokens := Tokenize(body)
		if len(tokens) > 0 {
			tag.Type = tokens[0]
			tag.Description = strings.Join(tokens[1:], " ")
		}
	case "method":
		parseMethod(&tag, body)
	default:
		tag.Description = body
	}
	return tag
}

// parseMethod handles "[static] [type] name(params) description"
func parseMethod(tag *Tag, body string) {
	tokens := Tokenize(body)
	call := -1
	for i, tok := range tokens {
		if strings.Contains(tok, "(") {
			call = i
			break
		}
	}
	if call < 0 {
		tag.Description = body
		return
	}

	sig := tokens[call]
	head := tokens[:call]
	open := strings.IndexByte(sig, '(')
	tag.Method = sig[:open]
	if tag.Method == "" && len(head) > 0 {
		tag.Method = head[len(head)-1]
		head = head[:len(head)-1]
	}
	if len(head) > 1 && head[0] == "static" {
		tag.Static = true
		head = head[1:]
	}
	tag.Type = strings.Join(head, " ")

	inner := sig[open+1:]
	if close := strings.LastIndexByte(inner, ')'); close >= 0 {
		inner = inner[:close]
	}
	for _, p := range splitTop(inner, ',') {
		if param, ok := parseParam(p); ok {
			tag.Params = append(tag.Params, param)
		}
	}
	tag.Description = strings.Join(tokens[call+1:], " ")
}

func parseParam(text string) (Param, bool) {
	if eq := strings.IndexByte(text, '='); eq >= 0 {
		text = text[:eq]
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return Param{}, false
	}
	p := Param{}
	last := tokens[len(tokens)-1]
	if isVariable(last) {
		p.Variadic = strings.Contains(last, "...")
		p.Name = strings.TrimLeft(last, "&.")
		tokens = tokens[:len(tokens)-1]
	}
	p.Type = strings.Join(tokens, " ")
	if p.Name == "" && p.Type == "" {
		return Param{}, false
	}
	return p, true
}

func isVariable(tok string) bool {
	return strings.HasPrefix(strings.TrimLeft(tok, "&."), "$")
}

func splitWord(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// Tokenize splits on whitespace outside of (), <>, {} and [] so types like
// array<string, int> and signatures stay whole
func Tokenize(s string) []string {
	var (
		out   []string
		depth int
		start = -1
	)
	for i, r := range s {
		switch r {
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			if depth > 0 {
				depth--
			}
		}
		space := r == ' ' || r == '\t' || r == '\n'
		if space && depth == 0 {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func splitTop(s string, sep rune) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(', '<', '{', '[':
			depth++
		case ')', '>', '}', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out
}
