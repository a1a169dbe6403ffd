package commands

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/codec"
	"github.com/c360studio/semcodec/document"
)

// DecodeCommand decodes one document file and prints the normalized
// document, or a dump of the record with --dump.
func DecodeCommand(env *Env) *cobra.Command {
	var (
		typeName string
		dump     bool
		output   string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a document into a record",
		Long: `Decode a YAML or JSON document into a registered record type and
encode it back. The output has every default filled in and values in their
declared types, so it shows exactly what the codec understood.

Without --type the type is chosen from the document's keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := env.codec()
			record, err := decodeFile(c, args[0], typeName)
			if err != nil {
				return err
			}

			if dump {
				spew.Fdump(env.Out, record)
				return nil
			}

			normalized, err := c.Encode(record)
			if err != nil {
				return fmt.Errorf("encode %s: %w", args[0], err)
			}
			if output != "" {
				return document.WriteFile(output, normalized)
			}

			f := document.FormatYAML
			if format != "" {
				f = document.Format(format)
			}
			data, err := document.Marshal(normalized, f)
			if err != nil {
				return err
			}
			_, err = env.Out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Record type name (default: chosen by document shape)")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the decoded Go record instead of the document")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Write to file; the extension picks the format")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Stdout format (yaml, json)")

	return cmd
}

// decodeFile reads path and decodes it into the named or selected type.
func decodeFile(c *codec.Codec, path, typeName string) (any, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rt, err := selectType(c, doc, typeName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	record, err := c.Decode(rt, doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", path, rt.Name(), err)
	}
	return record, nil
}
