package commands

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semcodec/codec"
	"github.com/c360studio/semcodec/config"
	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/graph"
	"github.com/c360studio/semcodec/metrics"
	"github.com/c360studio/semcodec/schema"
	"github.com/c360studio/semcodec/vocabulary/dcat"
)

const datasetYAML = `id: https://data.example.org/dataset/air
title: Air quality
keywords: [air]
distributions:
  - access_url: https://data.example.org/air.csv
    media_type: text/csv
`

type fakeConn struct {
	subjects []string
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func newTestEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	reg := schema.NewRegistry(nil)
	require.NoError(t, dcat.Register(reg))

	out := &bytes.Buffer{}
	return &Env{
		Out:      out,
		Err:      io.Discard,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   config.DefaultConfig(),
		Registry: reg,
		Metrics:  metrics.New(),
	}, out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func parse(t *testing.T, src string) any {
	t.Helper()
	doc, err := document.Parse([]byte(src), document.FormatYAML)
	require.NoError(t, err)
	return doc
}

func TestSelectType(t *testing.T) {
	env, _ := newTestEnv(t)
	c := env.codec()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"sparse resource", "id: https://x.example/r\ntitle: R\n", "Resource"},
		{"dataset keys", "title: D\ndistributions: []\n", "Dataset"},
		{"series keys", "title: S\nfrequency: annual\n", "DatasetSeries"},
		{"catalog keys", "title: C\ndatasets: []\n", "Catalog"},
		{"agent", "name: Example Org\n", "Agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := selectType(c, parse(t, tt.doc), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Name())
		})
	}

	rt, err := selectType(c, parse(t, "title: D\n"), "Catalog")
	require.NoError(t, err)
	assert.Equal(t, "Catalog", rt.Name())

	_, err = selectType(c, parse(t, "title: D\n"), "Nope")
	assert.Error(t, err)

	_, err = selectType(c, parse(t, "unknown: 1\n"), "")
	assert.ErrorIs(t, err, codec.ErrNoCandidate)
}

func TestSelectTypeAmbiguous(t *testing.T) {
	type Left struct {
		Label string `codec:"label"`
	}
	type Right struct {
		Label string `codec:"label"`
	}
	reg := schema.NewRegistry(nil)
	reg.MustRegister(Left{})
	reg.MustRegister(Right{})

	_, err := selectType(codec.New(reg), parse(t, "label: x\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --type")
}

func TestTypesCommand(t *testing.T) {
	env, out := newTestEnv(t)

	cmd := TypesCommand(env)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	for _, name := range []string{"Agent", "Catalog", "DatasetSeries", "Distribution"} {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, out.String(), string(dcat.ClassCatalog))

	out.Reset()
	cmd = TypesCommand(env)
	cmd.SetArgs([]string{"Catalog"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "publisher")
	assert.Contains(t, out.String(), "mandatory")

	cmd = TypesCommand(env)
	cmd.SetArgs([]string{"Nope"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}

func TestDecodeCommand(t *testing.T) {
	env, out := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "air.yaml", datasetYAML)

	cmd := DecodeCommand(env)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	// Defaults are filled in and key order follows the record fields.
	normalized := out.String()
	assert.Contains(t, normalized, "title: Air quality")
	assert.Contains(t, normalized, "description: \"\"")
	assert.Less(t, strings.Index(normalized, "id:"), strings.Index(normalized, "title:"))
}

func TestDecodeCommandOutputs(t *testing.T) {
	env, out := newTestEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "air.yaml", datasetYAML)

	cmd := DecodeCommand(env)
	cmd.SetArgs([]string{path, "--format", "json"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "{"), "expected JSON, got %q", out.String())

	out.Reset()
	cmd = DecodeCommand(env)
	cmd.SetArgs([]string{path, "--dump"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "dcat.Dataset")

	target := filepath.Join(dir, "normalized.json")
	cmd = DecodeCommand(env)
	cmd.SetArgs([]string{path, "--type", "Dataset", "--out", target})
	require.NoError(t, cmd.Execute())
	doc, err := document.ReadFile(target)
	require.NoError(t, err)
	ds, err := codec.DecodeAs[dcat.Dataset](env.codec(), doc)
	require.NoError(t, err)
	assert.Equal(t, "Air quality", ds.Title)
}

func TestDecodeCommandReportsDecodeErrors(t *testing.T) {
	env, _ := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "bad.yaml", "title: T\nissued: not-a-date\n")

	cmd := DecodeCommand(env)
	cmd.SetArgs([]string{path, "--type", "Resource"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()

	var decodeErr *codec.DecodeValueError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestExportCommand(t *testing.T) {
	env, out := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "air.yaml", datasetYAML)

	cmd := ExportCommand(env)
	cmd.SetArgs([]string{path, "--format", "nt"})
	require.NoError(t, cmd.Execute())

	nt := out.String()
	assert.Contains(t, nt, `<https://data.example.org/dataset/air> <`+string(dcat.PropKeyword)+`> "air" .`)
	assert.Contains(t, nt, `<`+dcat.PropAccessURL+`> <https://data.example.org/air.csv> .`)
}

func TestExportCommandToFile(t *testing.T) {
	env, out := newTestEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "a/air.yaml", datasetYAML)
	writeFile(t, dir, "b/deep/noise.yaml", "id: https://data.example.org/dataset/noise\ntitle: Noise\n")
	env.Config.Metrics.Textfile = filepath.Join(dir, "metrics.prom")

	target := filepath.Join(dir, "graph.ttl")
	cmd := ExportCommand(env)
	cmd.SetArgs([]string{filepath.Join(dir, "**", "*.yaml"), "--out", target})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, out.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	ttl := string(data)
	assert.Contains(t, ttl, "@prefix dcat:")
	assert.Contains(t, ttl, "<https://data.example.org/dataset/air>")
	assert.Contains(t, ttl, "<https://data.example.org/dataset/noise>")

	prom, err := os.ReadFile(env.Config.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "semcodec_document_decoded_total")
}

func TestExportCommandPublishes(t *testing.T) {
	env, _ := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "air.yaml", datasetYAML)

	conn := &fakeConn{}
	var dialed string
	env.Dial = func(url string, timeout time.Duration) (graph.Conn, func() error, error) {
		dialed = url
		return conn, func() error { conn.closed = true; return nil }, nil
	}

	cmd := ExportCommand(env)
	cmd.SetArgs([]string{path, "--publish", "--nats-url", "nats://fake:4222"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "nats://fake:4222", dialed)
	assert.True(t, conn.closed)
	// The dataset and its blank-node distribution.
	assert.Equal(t, []string{graph.GraphIngestSubject, graph.GraphIngestSubject}, conn.subjects)
}

func TestExportCommandPublishErrors(t *testing.T) {
	env, _ := newTestEnv(t)
	path := writeFile(t, t.TempDir(), "air.yaml", datasetYAML)

	cmd := ExportCommand(env)
	cmd.SetArgs([]string{path, "--publish"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorContains(t, cmd.Execute(), "NATS URL")

	failure := errors.New("dial failed")
	env.Config.NATS.URL = "nats://fake:4222"
	env.Dial = func(string, time.Duration) (graph.Conn, func() error, error) {
		return nil, nil, failure
	}
	cmd = ExportCommand(env)
	cmd.SetArgs([]string{path, "--publish"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.ErrorIs(t, cmd.Execute(), failure)
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		flag, output, configured string
		want                     string
		wantErr                  bool
	}{
		{"jsonld", "out.ttl", "turtle", "jsonld", false},
		{"", "out.nt", "turtle", "ntriples", false},
		{"", "out.txt", "jsonld", "jsonld", false},
		{"", "", "turtle", "turtle", false},
		{"rdfxml", "", "turtle", "", true},
	}
	for _, tt := range tests {
		got, err := exportFormat(tt.flag, tt.output, tt.configured)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "x: 1\n")
	b := writeFile(t, dir, "sub/b.yaml", "x: 1\n")
	writeFile(t, dir, "sub/c.json", "{}")

	files, err := expandInputs([]string{
		filepath.Join(dir, "**", "*.yaml"),
		a,
		filepath.Join(dir, "missing.yaml"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "missing.yaml"), b}, files)
}

func TestWrapNATSError(t *testing.T) {
	err := wrapNATSError(errors.New("dial tcp: connection refused"), "nats://localhost:4222")
	assert.Contains(t, err.Error(), "NATS is not running at nats://localhost:4222")

	err = wrapNATSError(errors.New("authorization violation"), "nats://localhost:4222")
	assert.NotContains(t, err.Error(), "not running")
}
