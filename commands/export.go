package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/export"
	"github.com/c360studio/semcodec/graph"
	"github.com/c360studio/semcodec/rdf"
)

// ExportCommand decodes document files and serializes their graph.
func ExportCommand(env *Env) *cobra.Command {
	var (
		typeName string
		format   string
		output   string
		baseIRI  string
		publish  bool
		natsURL  string
	)

	cmd := &cobra.Command{
		Use:   "export <file|glob>...",
		Short: "Export documents as RDF",
		Long: `Decode each matching document and encode the records into one graph,
then write it as Turtle, N-Triples or JSON-LD. Globs support ** (for example
"catalogs/**/*.yaml").

With --publish the graph is also sent to the graph ingestion subject over
NATS, one message per subject node.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := env.Config
			if output == "" {
				output = cfg.Export.Output
			}
			f, err := exportFormat(format, output, cfg.Export.Format)
			if err != nil {
				return err
			}
			if baseIRI == "" {
				baseIRI = cfg.Export.BaseIRI
			}
			if natsURL == "" {
				natsURL = cfg.NATS.URL
			}
			if publish && natsURL == "" {
				return fmt.Errorf("--publish needs a NATS URL (--nats-url or nats.url in config)")
			}

			files, err := expandInputs(args)
			if err != nil {
				return err
			}

			g := rdf.NewGraph()
			var sink rdf.Sink = g
			var messages *graph.MessageSink
			if publish {
				messages = graph.NewMessageSink(cfg.Export.Source)
				sink = rdf.Tee(g, messages)
			}

			c := env.codec()
			enc := env.encoder()
			for _, path := range files {
				record, err := decodeFile(c, path, typeName)
				if err != nil {
					return err
				}
				if _, err := enc.Encode(record, sink); err != nil {
					return fmt.Errorf("graph %s: %w", path, err)
				}
				env.Logger.Debug("Encoded document", slog.String("file", path))
			}

			exporter := export.NewRDFExporter(
				export.WithPrefixes(env.Registry.Prefixes()),
				export.WithPrefixes(cfg.Export.Prefixes),
				export.WithBaseIRI(baseIRI))
			out, err := exporter.Export(g, f)
			if err != nil {
				return err
			}
			if output != "" {
				if err := atomic.WriteFile(output, strings.NewReader(out)); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				env.Logger.Info("Exported graph",
					slog.String("output", output),
					slog.String("format", string(f)),
					slog.Int("files", len(files)),
					slog.Int("triples", g.Len()))
			} else if _, err := fmt.Fprint(env.Out, out); err != nil {
				return err
			}

			if publish {
				if err := publishGraph(cmd, env, natsURL, messages); err != nil {
					return err
				}
			}

			if path := cfg.Metrics.Textfile; path != "" {
				if err := env.Metrics.WriteTextfile(path); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Record type name (default: chosen by document shape)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&baseIRI, "base-iri", "", "Base IRI for JSON-LD output")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the graph to NATS")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL")

	return cmd
}

// exportFormat resolves the output format: the flag, then the output file
// extension, then the configured default.
func exportFormat(flag, output, configured string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if output != "" {
		if f, err := export.FormatFromPath(output); err == nil {
			return f, nil
		}
	}
	return export.ParseFormat(configured)
}

// expandInputs resolves each argument as a doublestar glob. An argument
// without matches is kept as given so the read reports it. The result is
// sorted and free of duplicates.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func publishGraph(cmd *cobra.Command, env *Env, url string, messages *graph.MessageSink) error {
	conn, closeConn, err := env.dialer()(url, env.Config.NATS.Timeout)
	if err != nil {
		return err
	}

	sent, err := graph.NewPublisher(conn, env.Config.NATS.Subject, env.Logger).Publish(cmd.Context(), messages)
	if cerr := closeConn(); err == nil && cerr != nil {
		err = fmt.Errorf("flush: %w", cerr)
	}
	if err != nil {
		return err
	}
	env.Logger.Info("Published graph",
		slog.String("url", url),
		slog.String("subject", env.Config.NATS.Subject),
		slog.Int("entities", sent))
	return nil
}
