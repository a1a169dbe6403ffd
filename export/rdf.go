// Package export serializes triple graphs as Turtle, N-Triples or JSON-LD.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/c360studio/semcodec/rdf"
)

// RDFExporter serializes graphs with a fixed prefix table.
type RDFExporter struct {
	prefixes map[string]string
	baseIRI  string
}

// Option configures an RDFExporter.
type Option func(*RDFExporter)

// WithPrefixes adds namespace prefixes, replacing defaults with the same name.
func WithPrefixes(prefixes map[string]string) Option {
	return func(e *RDFExporter) {
		for k, v := range prefixes {
			e.prefixes[k] = v
		}
	}
}

// WithBaseIRI sets the JSON-LD base IRI.
func WithBaseIRI(base string) Option {
	return func(e *RDFExporter) { e.baseIRI = base }
}

// NewRDFExporter creates an exporter with the standard prefixes.
func NewRDFExporter(opts ...Option) *RDFExporter {
	e := &RDFExporter{prefixes: defaultPrefixes()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":     rdf.RDFNamespace,
		"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
		"owl":     "http://www.w3.org/2002/07/owl#",
		"xsd":     rdf.XSDNamespace,
		"dcterms": "http://purl.org/dc/terms/",
		"dcat":    "http://www.w3.org/ns/dcat#",
		"foaf":    "http://xmlns.com/foaf/0.1/",
		"skos":    "http://www.w3.org/2004/02/skos/core#",
		"prov":    "http://www.w3.org/ns/prov#",
	}
}

// Prefixes returns a copy of the prefix table.
func (e *RDFExporter) Prefixes() map[string]string {
	out := make(map[string]string, len(e.prefixes))
	for k, v := range e.prefixes {
		out[k] = v
	}
	return out
}

// Export serializes g to the specified format.
func (e *RDFExporter) Export(g *rdf.Graph, format Format) (string, error) {
	var sb strings.Builder
	if err := e.Write(&sb, g, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write serializes g to w.
func (e *RDFExporter) Write(w io.Writer, g *rdf.Graph, format Format) error {
	var out string
	switch format {
	case FormatTurtle:
		out = e.toTurtle(g)
	case FormatNTriples:
		out = toNTriples(g)
	case FormatJSONLD:
		s, err := e.toJSONLD(g)
		if err != nil {
			return err
		}
		out = s
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	_, err := io.WriteString(w, out)
	return err
}

// toNTriples serializes to N-Triples format, one statement per line in
// insertion order.
func toNTriples(g *rdf.Graph) string {
	var sb strings.Builder
	for _, t := range g.Triples() {
		fmt.Fprintf(&sb, "%s <%s> %s .\n", formatTermNTriples(t.S), t.P, formatTermNTriples(t.O))
	}
	return sb.String()
}

// toTurtle serializes to Turtle, grouping statements by subject and then by
// predicate. Only prefixes that are used are declared.
func (e *RDFExporter) toTurtle(g *rdf.Graph) string {
	c := newCompactor(e.prefixes)

	type group struct {
		subject    rdf.Term
		predicates []rdf.IRI
		objects    map[rdf.IRI][]rdf.Term
	}
	var groups []*group
	bySubject := make(map[rdf.Term]*group)
	for _, t := range g.Triples() {
		grp, ok := bySubject[t.S]
		if !ok {
			grp = &group{subject: t.S, objects: make(map[rdf.IRI][]rdf.Term)}
			bySubject[t.S] = grp
			groups = append(groups, grp)
		}
		if _, seen := grp.objects[t.P]; !seen {
			grp.predicates = append(grp.predicates, t.P)
		}
		grp.objects[t.P] = append(grp.objects[t.P], t.O)
	}

	var body strings.Builder
	for _, grp := range groups {
		body.WriteString(c.term(grp.subject))
		body.WriteString("\n")
		for i, p := range grp.predicates {
			pred := "a"
			if p != rdf.Type {
				pred = c.iri(p)
			}
			objs := make([]string, len(grp.objects[p]))
			for j, o := range grp.objects[p] {
				objs[j] = c.term(o)
			}
			terminator := " ;"
			if i == len(grp.predicates)-1 {
				terminator = " ."
			}
			fmt.Fprintf(&body, "    %s %s%s\n", pred, strings.Join(objs, ", "), terminator)
		}
		body.WriteString("\n")
	}

	var sb strings.Builder
	for _, prefix := range c.usedPrefixes() {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", prefix, e.prefixes[prefix])
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(body.String())
	return sb.String()
}

// toJSONLD converts the graph through json-gold: N-Quads to expanded JSON-LD,
// then compaction against the prefix table.
func (e *RDFExporter) toJSONLD(g *rdf.Graph) (string, error) {
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(e.baseIRI)
	opts.Format = "application/n-quads"

	expanded, err := proc.FromRDF(toNTriples(g), opts)
	if err != nil {
		return "", fmt.Errorf("json-ld from rdf: %w", err)
	}

	context := make(map[string]any, len(e.prefixes))
	for k, v := range e.prefixes {
		context[k] = v
	}
	compacted, err := proc.Compact(expanded, map[string]any{"@context": context}, ld.NewJsonLdOptions(e.baseIRI))
	if err != nil {
		return "", fmt.Errorf("json-ld compact: %w", err)
	}

	data, err := json.MarshalIndent(compacted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

// compactor shortens IRIs to prefixed names and records which prefixes it
// used.
type compactor struct {
	prefixes map[string]string
	order    []string
	used     map[string]bool
}

func newCompactor(prefixes map[string]string) *compactor {
	order := make([]string, 0, len(prefixes))
	for k := range prefixes {
		order = append(order, k)
	}
	// Longest namespace first so nested namespaces win.
	sort.Slice(order, func(i, j int) bool {
		a, b := prefixes[order[i]], prefixes[order[j]]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return order[i] < order[j]
	})
	return &compactor{prefixes: prefixes, order: order, used: make(map[string]bool)}
}

func (c *compactor) iri(i rdf.IRI) string {
	s := string(i)
	for _, prefix := range c.order {
		ns := c.prefixes[prefix]
		if ns == "" || !strings.HasPrefix(s, ns) {
			continue
		}
		local := s[len(ns):]
		if validLocalName(local) {
			c.used[prefix] = true
			return prefix + ":" + local
		}
	}
	return "<" + s + ">"
}

func (c *compactor) term(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return c.iri(v)
	case rdf.Literal:
		lex := `"` + escapeString(v.Lexical) + `"`
		switch {
		case v.Lang != "":
			return lex + "@" + v.Lang
		case v.Datatype != "" && v.Datatype != rdf.XSDString:
			return lex + "^^" + c.iri(v.Datatype)
		}
		return lex
	}
	return t.String()
}

func (c *compactor) usedPrefixes() []string {
	out := make([]string, 0, len(c.used))
	for p := range c.used {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// validLocalName accepts the conservative subset of Turtle local names that
// needs no escaping.
func validLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// formatTermNTriples formats a term for N-Triples output.
func formatTermNTriples(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return "<" + string(v) + ">"
	case rdf.Literal:
		lex := `"` + escapeString(v.Lexical) + `"`
		switch {
		case v.Lang != "":
			return lex + "@" + v.Lang
		case v.Datatype != "" && v.Datatype != rdf.XSDString:
			return lex + "^^<" + string(v.Datatype) + ">"
		}
		return lex
	}
	return t.String()
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
