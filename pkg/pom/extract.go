package pom

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/matzehuels/pommapper/pkg/errors"
)

// maxExpansionDepth bounds nested ${...} substitution.
const maxExpansionDepth = 8

// Document is a parsed POM.
type Document struct {
	root  *element
	props map[string]string
}

type element struct {
	name     string
	text     strings.Builder // own character data
	deep     strings.Builder // character data of the element and its descendants
	children []*element
}

func (e *element) childrenNamed(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if name == "*" || c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (e *element) walk(fn func(*element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

func (e *element) ownText() string {
	return strings.TrimSpace(e.text.String())
}

func (e *element) allText() string {
	return strings.TrimSpace(e.deep.String())
}

// Parse reads a POM document. Namespaces are discarded.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	doc := &element{}
	stack := []*element{doc}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedPOM, err, "parse pom")
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{name: t.Name.Local}
			top.children = append(top.children, e)
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, errors.New(errors.ErrCodeMalformedPOM, "unexpected end element %q", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.text.Write(t)
			for _, e := range stack[1:] {
				e.deep.Write(t)
			}
		}
	}
	if len(stack) != 1 {
		return nil, errors.New(errors.ErrCodeMalformedPOM, "unterminated element %q", stack[len(stack)-1].name)
	}
	if len(doc.children) != 1 {
		return nil, errors.New(errors.ErrCodeMalformedPOM, "pom must have exactly one root element")
	}

	d := &Document{root: doc}
	d.props = d.properties()
	return d, nil
}

func (d *Document) project() *element {
	if p := d.root.child("project"); p != nil {
		return p
	}
	return d.root.children[0]
}

func (d *Document) properties() map[string]string {
	props := make(map[string]string)
	project := d.project()
	if p := project.child("properties"); p != nil {
		for _, c := range p.children {
			props[c.name] = c.allText()
		}
	}
	parent := project.child("parent")
	for _, key := range []string{"version", "groupId", "artifactId"} {
		v := ""
		if e := project.child(key); e != nil {
			v = e.allText()
		}
		if v == "" && parent != nil && key != "artifactId" {
			if e := parent.child(key); e != nil {
				v = e.allText()
			}
		}
		if v != "" {
			props["project."+key] = v
			props["pom."+key] = v
		}
	}
	return props
}

// Field evaluates one compiled rule. It returns ErrCodeFieldMissing when
// nothing matches or the match is empty.
func (d *Document) Field(r *Rule) (string, error) {
	e, ok := r.eval(d.root)
	if !ok {
		return "", errors.New(errors.ErrCodeFieldMissing, "no element matches %q", r.raw)
	}
	v := e.allText()
	if r.textOnly {
		v = e.ownText()
	}
	if v == "" {
		return "", errors.New(errors.ErrCodeFieldMissing, "element for %q is empty", r.raw)
	}
	return d.Expand(v), nil
}

// Fields evaluates every rule. The first missing field aborts extraction.
func (d *Document) Fields(rules Rules) (map[string]string, error) {
	out := make(map[string]string, len(rules))
	for _, name := range rules.Names() {
		v, err := d.Field(rules[name])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFieldMissing, err, "field %q", name)
		}
		out[name] = v
	}
	return out, nil
}

// Expand replaces ${name} references with known property values.
func (d *Document) Expand(s string) string {
	for range maxExpansionDepth {
		next := d.expandOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (d *Document) expandOnce(s string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		name := s[i+2 : i+j]
		b.WriteString(s[:i])
		if v, ok := d.props[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+j+1])
		}
		s = s[i+j+1:]
	}
}

// Extract parses a POM and evaluates the given rules against it.
func Extract(r io.Reader, rules map[string]string) (map[string]string, error) {
	compiled, err := Compile(rules)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return doc.Fields(compiled)
}
