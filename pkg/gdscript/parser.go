package gdscript

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ParseFile reads and parses one GDScript file. relPath is recorded as the
// class's FilePath and is used by callers to derive names for unnamed scripts.
func ParseFile(path, relPath string) (*ClassInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	info := Parse(string(data))
	info.FilePath = relPath
	return info, nil
}

// Parse extracts class documentation from GDScript source text.
func Parse(source string) *ClassInfo {
	r := &lineReader{lines: strings.Split(source, "\n")}
	info := &ClassInfo{}
	parseHeader(r, info)

	var doc []string
	for {
		line, ok := r.next()
		if !ok {
			break
		}
		if isBlank(line) {
			continue
		}
		if stripped, ok := docComment(line); ok {
			doc = append(doc, stripped)
			continue
		}

		annotation := ""
		if strings.HasPrefix(line, "@") {
			fields := strings.Fields(line)
			if len(fields) == 1 {
				// A bare annotation like @tool or @export annotates the next
				// line; nothing to parse here.
				continue
			}
			annotation = fields[0]
			line = strings.TrimSpace(strings.TrimPrefix(line, annotation))
		}

		description := ""
		if len(doc) > 0 {
			description = BBCodeToMarkdown(strings.Join(doc, "\n"))
		}
		switch {
		case strings.HasPrefix(line, "signal"):
			info.Signals = append(info.Signals, parseSignal(r, line, description))
		case strings.HasPrefix(line, "enum"):
			info.Enums = append(info.Enums, parseEnum(r, line, description))
		case strings.HasPrefix(line, "var"):
			info.Properties = append(info.Properties,
				parseProperty(r, line, description, annotation == "@onready"))
		case strings.HasPrefix(line, "func"):
			info.Methods = append(info.Methods, parseMethod(r, line, description))
		}
		doc = doc[:0]
	}
	return info
}

// lineReader walks a script line by line with one line of pushback, which the
// member parsers use to stop at the first line that is not theirs.
type lineReader struct {
	lines []string
	index int
}

func (r *lineReader) next() (string, bool) {
	if r.index >= len(r.lines) {
		return "", false
	}
	line := r.lines[r.index]
	r.index++
	return line, true
}

func (r *lineReader) backup() {
	if r.index > 0 {
		r.index--
	}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// docComment reports whether line is a '##' doc comment and returns its text.
func docComment(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "##") {
		return "", false
	}
	return strings.TrimSpace(trimmed[2:]), true
}

// parseHeader reads the script prologue: class_name, extends and the class
// doc comment. A blank doc comment line splits the comment into a one-line
// summary and a longer description.
func parseHeader(r *lineReader, info *ClassInfo) {
	var doc []string
	defFound := false
	for {
		line, ok := r.next()
		if !ok {
			break
		}
		if _, isDoc := docComment(line); defFound && !isDoc {
			r.backup()
			break
		}
		if isBlank(line) {
			continue
		}

		if strings.HasPrefix(line, "class_name") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				info.Name = fields[1]
			}
			// class_name and extends may share a line.
			if len(fields) >= 3 {
				line = strings.Join(fields[2:], " ")
			}
		}
		if strings.HasPrefix(line, "extends") {
			if fields := strings.Fields(line); len(fields) >= 2 {
				info.Extends = fields[1]
			}
			defFound = true
		}
		if stripped, isDoc := docComment(line); isDoc {
			doc = append(doc, stripped)
		}
	}

	if len(doc) == 0 {
		return
	}
	for i, line := range doc {
		if line == "" {
			info.Summary = BBCodeToMarkdown(strings.Join(doc[:i], "\n"))
			info.Description = BBCodeToMarkdown(strings.Join(doc[i+1:], "\n"))
			return
		}
	}
	info.Summary = BBCodeToMarkdown(strings.Join(doc, "\n"))
}

// parseArgs splits the parenthesized argument list of a signal or method
// definition into ArgInfo records. definition may span what used to be
// several source lines, already joined.
func parseArgs(definition string) []ArgInfo {
	open := strings.Index(definition, "(")
	end := strings.Index(definition, ")")
	if open < 0 || end < open {
		return nil
	}
	argStr := strings.TrimSpace(definition[open+1 : end])
	if argStr == "" {
		return nil
	}
	var args []ArgInfo
	for _, raw := range strings.Split(argStr, ",") {
		arg := ArgInfo{}
		if name, def, found := strings.Cut(raw, "="); found {
			raw = name
			arg.Default = strings.TrimSpace(strings.TrimPrefix(def, "="))
		}
		if name, typ, found := strings.Cut(raw, ":"); found {
			raw = name
			arg.Type = strings.TrimSpace(typ)
		}
		arg.Name = strings.TrimSpace(raw)
		args = append(args, arg)
	}
	return args
}

// parseSignal parses a signal declaration, joining continuation lines until
// the argument list closes.
func parseSignal(r *lineReader, line, description string) SignalInfo {
	info := SignalInfo{Description: description}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "signal"))

	if strings.Contains(line, "(") {
		definition := line
		for !strings.HasSuffix(strings.TrimRight(definition, " \t"), ")") {
			cont, ok := r.next()
			if !ok {
				break
			}
			definition += strings.TrimSpace(cont)
		}
		info.Args = parseArgs(definition)
		rest = rest[:strings.Index(rest, "(")]
	}
	info.Name = strings.TrimSpace(rest)
	return info
}

// parseMethod parses a func declaration, joining continuation lines until the
// signature's trailing ':'.
func parseMethod(r *lineReader, line, description string) MethodInfo {
	info := MethodInfo{Description: description}

	definition := line
	last := line
	for !strings.HasSuffix(strings.TrimRight(definition, " \t"), ":") {
		cont, ok := r.next()
		if !ok {
			break
		}
		definition += strings.TrimSpace(cont)
		last = cont
	}
	info.Args = parseArgs(definition)

	if i := strings.Index(last, "->"); i >= 0 {
		returnType := strings.TrimRight(last, " \t")
		returnType = strings.TrimSuffix(returnType[i+2:], ":")
		info.ReturnType = strings.TrimSpace(returnType)
	}

	name := strings.TrimSpace(strings.TrimPrefix(line, "func"))
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	info.Name = strings.TrimSpace(name)
	return info
}

// parseEnum parses an enum declaration in either its inline form
// 'enum State { OPEN, CLOSED }' or its block form with one value per line.
func parseEnum(r *lineReader, line, description string) EnumInfo {
	info := EnumInfo{Description: description, Vals: map[string]string{}}

	if fields := strings.Fields(line); len(fields) >= 2 {
		name := fields[1]
		if i := strings.Index(name, "{"); i >= 0 {
			name = name[:i]
		}
		info.Name = name
	}

	if strings.HasSuffix(strings.TrimRight(line, " \t"), "}") {
		open := strings.Index(line, "{")
		end := strings.Index(line, "}")
		if open < 0 || end < open {
			return info
		}
		for _, val := range strings.Split(line[open+1:end], ",") {
			if val = strings.TrimSpace(val); val != "" {
				info.Vals[val] = ""
			}
		}
		return info
	}

	for {
		valLine, ok := r.next()
		if !ok {
			return info
		}
		if isBlank(valLine) {
			continue
		}
		if strings.HasSuffix(strings.TrimRight(valLine, " \t"), "}") {
			return info
		}
		value, desc, hasDoc := strings.Cut(valLine, "##")
		value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
		if value == "" {
			continue
		}
		if hasDoc {
			info.Vals[value] = strings.TrimSpace(desc)
		} else {
			info.Vals[value] = ""
		}
	}
}

var (
	propertyPattern  = regexp.MustCompile(`^var\s+(\w+)`)
	inlineSetPattern = regexp.MustCompile(`\bset\s*=`)
	inlineGetPattern = regexp.MustCompile(`\bget\s*=`)
	identPattern     = regexp.MustCompile(`^\w+`)
)

// parseProperty parses a var declaration, including inline 'set =' / 'get ='
// definitions and an indented set/get block on the following lines. An
// @onready property's default is dropped: it is a scene lookup, not a value.
func parseProperty(r *lineReader, line, description string, onready bool) PropertyInfo {
	info := PropertyInfo{Description: description}

	m := propertyPattern.FindStringSubmatch(line)
	if m == nil {
		return info
	}
	info.Name = m[1]
	rest := strings.TrimSpace(line[len(m[0]):])

	// ': Type' annotation, unless the colon introduces an inline setget
	// definition as in 'var health = 10: set = _set_health'.
	if strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, ":=") {
		after := strings.TrimSpace(rest[1:])
		if !inlineSetPattern.MatchString(firstWordWithAssign(after)) &&
			!inlineGetPattern.MatchString(firstWordWithAssign(after)) {
			info.Type = identPattern.FindString(after)
			rest = strings.TrimSpace(after[len(info.Type):])
		}
	}

	if strings.HasPrefix(rest, ":=") || strings.HasPrefix(rest, "=") {
		value := strings.TrimPrefix(rest, ":")
		value = strings.TrimSpace(strings.TrimPrefix(value, "="))
		value, setgetDef := splitInlineSetget(value)
		if setgetDef != "" {
			applyInlineSetget(&info, setgetDef)
		}
		// A trailing lone ':' opens an indented set/get block on the next
		// lines; it is not part of the value.
		value = strings.TrimSuffix(strings.TrimSpace(value), ":")
		info.Default = collapseLiteral(strings.TrimSpace(value))
	} else if strings.HasPrefix(rest, ":") {
		applyInlineSetget(&info, rest[1:])
	}
	if onready {
		info.Default = ""
	}

	// An indented block after the declaration holds the set/get bodies.
	for {
		bodyLine, ok := r.next()
		if !ok {
			break
		}
		if bodyLine != "" && !strings.HasPrefix(bodyLine, " ") && !strings.HasPrefix(bodyLine, "\t") {
			r.backup()
			break
		}
		applyInlineSetget(&info, bodyLine)
		trimmed := strings.TrimLeft(bodyLine, " \t")
		if strings.HasPrefix(trimmed, "set") {
			info.HasSetter = true
		} else if strings.HasPrefix(trimmed, "get") {
			info.HasGetter = true
		}
	}
	return info
}

// firstWordWithAssign returns the leading identifier of s together with a
// following '=' if present, enough to recognize 'set =' and 'get ='.
func firstWordWithAssign(s string) string {
	word := identPattern.FindString(s)
	tail := strings.TrimLeft(s[len(word):], " \t")
	if strings.HasPrefix(tail, "=") {
		return word + " ="
	}
	return word
}

// splitInlineSetget cuts a default value off the ': set = ..., get = ...'
// suffix that may follow it on the same line.
func splitInlineSetget(value string) (string, string) {
	for i := 0; i < len(value); i++ {
		if value[i] != ':' {
			continue
		}
		after := value[i+1:]
		if inlineSetPattern.MatchString(firstWordWithAssign(strings.TrimSpace(after))) ||
			inlineGetPattern.MatchString(firstWordWithAssign(strings.TrimSpace(after))) {
			return value[:i], after
		}
	}
	return value, ""
}

func applyInlineSetget(info *PropertyInfo, text string) {
	if inlineSetPattern.MatchString(text) {
		info.HasSetter = true
	}
	if inlineGetPattern.MatchString(text) {
		info.HasGetter = true
	}
}

// collapseLiteral shortens dictionary and array defaults: the exact contents
// do not belong in a reference table.
func collapseLiteral(value string) string {
	switch {
	case strings.HasPrefix(value, "{"):
		if inner := innerOf(value, '}'); strings.TrimSpace(inner) == "" {
			return "{}"
		}
		return "{...}"
	case strings.HasPrefix(value, "["):
		if inner := innerOf(value, ']'); strings.TrimSpace(inner) == "" {
			return "[]"
		}
		return "[...]"
	}
	return value
}

func innerOf(value string, closer byte) string {
	if i := strings.IndexByte(value, closer); i >= 0 {
		return value[1:i]
	}
	return value[1:]
}
