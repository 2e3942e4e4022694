// Package proto implements the line-oriented text formats used to
// exchange widget trees and actions between an app session and its
// hosts (terminal, 9P clients, scripts).
//
// Tree format (deterministic, diff-friendly):
//
//	rev <uint64>
//	root <nodeid>
//	node <id> <type>
//	prop <id> <k>=<v> <k>=<v> ...
//	child <parent> <child>
//
// Action format (one per line):
//
//	<kind> <k>=<v> <k>=<v> ...
//
// Values containing blanks, quotes, '=', or backslashes are written in
// double quotes; inside quotes \n, \t, \\ and \" are escapes.
package proto

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrEmptyAction is returned by ParseAction for a blank line.
var ErrEmptyAction = errors.New("proto: empty action")

// Node is one node of a serialized tree.
type Node struct {
	ID       string
	Type     string
	Props    map[string]string
	Children []string // child IDs in order
}

// Tree is a complete tree snapshot.
type Tree struct {
	Rev   uint64
	Root  string
	Nodes map[string]*Node
	Order []string // node IDs in depth-first declaration order
}

// Action is a semantic UI action such as a click or a text edit.
type Action struct {
	Kind string
	KVs  map[string]string
}

// NewAction returns an action of the given kind. Pairs are read as
// key, value, key, value; a trailing odd key is ignored.
func NewAction(kind string, pairs ...string) *Action {
	a := &Action{Kind: kind, KVs: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.KVs[pairs[i]] = pairs[i+1]
	}
	return a
}

// Get returns the value for k, or "" if a is nil or k is unset.
func (a *Action) Get(k string) string {
	if a == nil {
		return ""
	}
	return a.KVs[k]
}

// Clone returns a deep copy of a.
func (a *Action) Clone() *Action {
	return &Action{Kind: a.Kind, KVs: maps.Clone(a.KVs)}
}

func (a *Action) String() string {
	return SerializeAction(a)
}

// Walk calls fn for every node reachable from the root, parents first.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(id string)
	walk = func(id string) {
		n := t.Nodes[id]
		if n == nil {
			return
		}
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
}

func needsQuote(s string) bool {
	return s == "" || strings.ContainsAny(s, " \t\n\\\"=")
}

// EscapeValue encodes s for the protocol, quoting if necessary.
func EscapeValue(s string) string {
	if !needsQuote(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// UnescapeValue decodes a possibly quoted protocol value.
func UnescapeValue(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FormatKV formats a key=value pair.
func FormatKV(k, v string) string {
	return k + "=" + EscapeValue(v)
}

// ParseKV splits a key=value token.
func ParseKV(token string) (k, v string, ok bool) {
	k, v, ok = strings.Cut(token, "=")
	if !ok {
		return "", "", false
	}
	return k, UnescapeValue(v), true
}

// skipQuoted returns the index just past the closing quote of the
// quoted run starting at line[i].
func skipQuoted(line string, i int) int {
	for j := i + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(line)
}

// Tokenize splits a line at blanks, keeping quoted runs (including a
// quoted value in k="v") intact.
func Tokenize(line string) []string {
	var tokens []string
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i == len(line) {
			break
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			if line[j] == '"' {
				j = skipQuoted(line, j)
				continue
			}
			j++
		}
		tokens = append(tokens, line[i:j])
		i = j
	}
	return tokens
}

// SerializeTree encodes t in the tree format.
func SerializeTree(t *Tree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rev %d\n", t.Rev)
	fmt.Fprintf(&b, "root %s\n", t.Root)
	for _, id := range t.Order {
		n := t.Nodes[id]
		if n == nil {
			continue
		}
		fmt.Fprintf(&b, "node %s %s\n", n.ID, n.Type)
		if len(n.Props) > 0 {
			b.WriteString("prop ")
			b.WriteString(n.ID)
			for _, k := range slices.Sorted(maps.Keys(n.Props)) {
				b.WriteByte(' ')
				b.WriteString(FormatKV(k, n.Props[k]))
			}
			b.WriteByte('\n')
		}
		for _, c := range n.Children {
			fmt.Fprintf(&b, "child %s %s\n", n.ID, c)
		}
	}
	return b.String()
}

func (t *Tree) node(id string) *Node {
	n := t.Nodes[id]
	if n == nil {
		n = &Node{ID: id, Props: make(map[string]string)}
		t.Nodes[id] = n
		t.Order = append(t.Order, id)
	}
	return n
}

// ParseTree decodes text in the tree format. Unknown directives are
// skipped.
func ParseTree(text string) (*Tree, error) {
	t := &Tree{Nodes: make(map[string]*Node)}
	for lineno, line := range strings.Split(text, "\n") {
		tokens := Tokenize(strings.TrimSpace(line))
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "rev":
			if len(tokens) < 2 {
				return nil, fmt.Errorf("proto: line %d: rev missing value", lineno+1)
			}
			v, err := strconv.ParseUint(tokens[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("proto: line %d: bad rev: %w", lineno+1, err)
			}
			t.Rev = v
		case "root":
			if len(tokens) < 2 {
				return nil, fmt.Errorf("proto: line %d: root missing value", lineno+1)
			}
			t.Root = tokens[1]
		case "node":
			if len(tokens) < 3 {
				return nil, fmt.Errorf("proto: line %d: node missing id or type", lineno+1)
			}
			t.node(tokens[1]).Type = tokens[2]
		case "prop":
			if len(tokens) < 2 {
				return nil, fmt.Errorf("proto: line %d: prop missing id", lineno+1)
			}
			n := t.node(tokens[1])
			for _, kv := range tokens[2:] {
				if k, v, ok := ParseKV(kv); ok {
					n.Props[k] = v
				}
			}
		case "child":
			if len(tokens) < 3 {
				return nil, fmt.Errorf("proto: line %d: child missing parent or child", lineno+1)
			}
			n := t.node(tokens[1])
			n.Children = append(n.Children, tokens[2])
		}
	}
	return t, nil
}

// SerializeAction encodes a in the action format.
func SerializeAction(a *Action) string {
	var b strings.Builder
	b.WriteString(a.Kind)
	for _, k := range slices.Sorted(maps.Keys(a.KVs)) {
		b.WriteByte(' ')
		b.WriteString(FormatKV(k, a.KVs[k]))
	}
	return b.String()
}

// ParseAction decodes one action line. Tokens without '=' are ignored.
// The kind must be a bare word.
func ParseAction(line string) (*Action, error) {
	tokens := Tokenize(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return nil, ErrEmptyAction
	}
	if strings.ContainsAny(tokens[0], "=\"") {
		return nil, fmt.Errorf("proto: bad action kind %q", tokens[0])
	}
	a := NewAction(tokens[0])
	for _, kv := range tokens[1:] {
		if k, v, ok := ParseKV(kv); ok {
			a.KVs[k] = v
		}
	}
	return a, nil
}
