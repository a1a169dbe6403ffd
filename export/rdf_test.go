package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/c360studio/semcodec/export"
	"github.com/c360studio/semcodec/rdf"
)

const (
	dcterms = "http://purl.org/dc/terms/"
	dcat    = "http://www.w3.org/ns/dcat#"
	ex      = "https://example.org/"
)

func sampleGraph() *rdf.Graph {
	g := rdf.NewGraph()
	ds := rdf.IRI(ex + "dataset/1")
	g.Add(ds, rdf.Type, rdf.IRI(dcat+"Dataset"))
	g.Add(ds, dcterms+"title", rdf.NewLiteral("Air \"quality\"\nreadings"))
	g.Add(ds, dcat+"keyword", rdf.LangLiteral("air", "en"))
	g.Add(ds, dcat+"keyword", rdf.LangLiteral("luft", "de"))
	g.Add(ds, dcterms+"issued", rdf.Literal{Lexical: "2020-01-01", Datatype: rdf.XSDDate})
	g.Add(ds, dcat+"distribution", rdf.BlankNode{ID: "d1"})
	g.Add(rdf.BlankNode{ID: "d1"}, dcat+"byteSize", rdf.Literal{Lexical: "42", Datatype: rdf.XSDInteger})
	return g
}

func TestNewRDFExporter(t *testing.T) {
	exporter := export.NewRDFExporter(export.WithPrefixes(map[string]string{"ex": ex}))
	if exporter == nil {
		t.Fatal("NewRDFExporter returned nil")
	}
	prefixes := exporter.Prefixes()
	if prefixes["ex"] != ex {
		t.Errorf("custom prefix missing: %v", prefixes)
	}
	if prefixes["dcat"] != dcat {
		t.Errorf("default prefix missing: %v", prefixes)
	}

	prefixes["ex"] = "changed"
	if exporter.Prefixes()["ex"] != ex {
		t.Error("Prefixes should return a copy")
	}
}

func TestExportNTriples(t *testing.T) {
	exporter := export.NewRDFExporter()

	output, err := exporter.Export(sampleGraph(), export.FormatNTriples)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), output)
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, " .") {
			t.Errorf("N-Triples line should end with ' .': %s", line)
		}
	}

	want := []string{
		`<https://example.org/dataset/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/ns/dcat#Dataset> .`,
		`<https://example.org/dataset/1> <http://purl.org/dc/terms/title> "Air \"quality\"\nreadings" .`,
		`<https://example.org/dataset/1> <http://www.w3.org/ns/dcat#keyword> "air"@en .`,
		`<https://example.org/dataset/1> <http://purl.org/dc/terms/issued> "2020-01-01"^^<http://www.w3.org/2001/XMLSchema#date> .`,
		`<https://example.org/dataset/1> <http://www.w3.org/ns/dcat#distribution> _:d1 .`,
		`_:d1 <http://www.w3.org/ns/dcat#byteSize> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
	}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("N-Triples output missing %s\n%s", w, output)
		}
	}
}

func TestExportTurtle(t *testing.T) {
	exporter := export.NewRDFExporter(export.WithPrefixes(map[string]string{"ex": ex}))

	output, err := exporter.Export(sampleGraph(), export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, w := range []string{
		"@prefix dcat: <http://www.w3.org/ns/dcat#> .",
		"@prefix dcterms: <http://purl.org/dc/terms/> .",
		"@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .",
		"<https://example.org/dataset/1>\n",
		"    a dcat:Dataset ;",
		`    dcat:keyword "air"@en, "luft"@de ;`,
		`    dcterms:issued "2020-01-01"^^xsd:date ;`,
		`    dcat:distribution _:d1 .`,
		`    dcat:byteSize "42"^^xsd:integer .`,
	} {
		if !strings.Contains(output, w) {
			t.Errorf("Turtle output missing %q\n%s", w, output)
		}
	}

	// Unused prefixes are not declared.
	if strings.Contains(output, "@prefix foaf:") || strings.Contains(output, "@prefix ex:") {
		t.Error("Turtle output should only declare used prefixes")
	}
	// rdf:type is written as "a", so the rdf prefix is unused.
	if strings.Contains(output, "@prefix rdf:") {
		t.Error("rdf prefix should not be declared when only rdf:type is used")
	}
}

func TestExportTurtleLocalNames(t *testing.T) {
	g := rdf.NewGraph()
	g.Add(rdf.IRI(dcat+"has/slash"), rdf.IRI(dcat+"ok_name"), rdf.IRI(dcat+"9starts-with-digit"))

	output, err := export.NewRDFExporter().Export(g, export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(output, "<http://www.w3.org/ns/dcat#has/slash>") {
		t.Errorf("IRI with slash should stay absolute:\n%s", output)
	}
	if !strings.Contains(output, "dcat:ok_name") {
		t.Errorf("simple local name should be compacted:\n%s", output)
	}
	if !strings.Contains(output, "<http://www.w3.org/ns/dcat#9starts-with-digit>") {
		t.Errorf("local name starting with a digit should stay absolute:\n%s", output)
	}
}

func TestExportJSONLD(t *testing.T) {
	exporter := export.NewRDFExporter()

	output, err := exporter.Export(sampleGraph(), export.FormatJSONLD)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("JSON-LD output is not valid JSON: %v\n%s", err, output)
	}
	if _, ok := doc["@context"]; !ok {
		t.Error("JSON-LD output should contain @context")
	}
	if !strings.Contains(output, "dcterms:title") {
		t.Errorf("JSON-LD output should use compacted predicates:\n%s", output)
	}
	if !strings.Contains(output, "dcat:Dataset") {
		t.Errorf("JSON-LD output should contain the class:\n%s", output)
	}
}

func TestExportEmptyGraph(t *testing.T) {
	exporter := export.NewRDFExporter()
	for _, format := range export.Formats() {
		t.Run(string(format), func(t *testing.T) {
			if _, err := exporter.Export(rdf.NewGraph(), format); err != nil {
				t.Errorf("Export of empty graph failed: %v", err)
			}
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := export.NewRDFExporter().Export(rdf.NewGraph(), export.Format("rdfxml"))
	if err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"turtle", export.FormatTurtle, false},
		{"TTL", export.FormatTurtle, false},
		{".nt", export.FormatNTriples, false},
		{"n-triples", export.FormatNTriples, false},
		{"json-ld", export.FormatJSONLD, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if f, err := export.FormatFromPath("out/catalog.jsonld"); err != nil || f != export.FormatJSONLD {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
}

func TestGetFormatInfo(t *testing.T) {
	for _, format := range export.Formats() {
		info, ok := export.GetFormatInfo(format)
		if !ok {
			t.Fatalf("no info for %s", format)
		}
		if info.MIMEType == "" || info.Extension == "" {
			t.Errorf("incomplete info for %s: %+v", format, info)
		}
		if f, err := export.FormatFromPath("x" + info.Extension); err != nil || f != format {
			t.Errorf("extension %s does not map back to %s", info.Extension, format)
		}
	}
	if _, ok := export.GetFormatInfo("rdfxml"); ok {
		t.Error("unexpected info for unknown format")
	}
}
