package commands

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/storage"
)

// StoreCommand manages normalized records in the NATS KV bucket.
func StoreCommand(env *Env) *cobra.Command {
	var (
		natsURL string
		bucket  string
	)

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep decoded records in a NATS KV bucket",
		Long: `Store decoded records in a JetStream key-value bucket and read them
back. Records are keyed as Type:ID, where ID is the record IRI or a generated
UUID for records without one.`,
	}
	cmd.PersistentFlags().StringVar(&natsURL, "nats-url", "", "NATS server URL")
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "KV bucket name")

	// withStore opens the bucket for the duration of fn.
	withStore := func(cmd *cobra.Command, fn func(*storage.Store) error) error {
		url := natsURL
		if url == "" {
			url = env.Config.NATS.URL
		}
		if url == "" {
			return fmt.Errorf("store needs a NATS URL (--nats-url or nats.url in config)")
		}
		name := bucket
		if name == "" {
			name = env.Config.NATS.Bucket
		}
		kv, closeConn, err := env.bucketOpener()(cmd.Context(), url, env.Config.NATS.Timeout, name)
		if err != nil {
			return err
		}
		defer closeConn()
		return fn(storage.NewStore(kv, env.codec(), env.Logger))
	}

	var typeName string
	put := &cobra.Command{
		Use:   "put <file|glob>...",
		Short: "Decode documents and store the records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandInputs(args)
			if err != nil {
				return err
			}
			c := env.codec()
			records := make([]any, 0, len(files))
			for _, path := range files {
				record, err := decodeFile(c, path, typeName)
				if err != nil {
					return err
				}
				records = append(records, record)
			}
			return withStore(cmd, func(s *storage.Store) error {
				for _, record := range records {
					key, err := s.Put(cmd.Context(), record)
					if err != nil {
						return err
					}
					fmt.Fprintln(env.Out, key)
				}
				return nil
			})
		},
	}
	put.Flags().StringVarP(&typeName, "type", "t", "", "Record type name (default: chosen by document shape)")

	var (
		format string
		dump   bool
	)
	get := &cobra.Command{
		Use:   "get <Type:ID>",
		Short: "Print a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := storage.ParseRecordKey(args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, func(s *storage.Store) error {
				if dump {
					record, err := s.Get(cmd.Context(), key)
					if err != nil {
						return err
					}
					spew.Fdump(env.Out, record)
					return nil
				}
				doc, err := s.GetDocument(cmd.Context(), key)
				if err != nil {
					return err
				}
				data, err := document.Marshal(doc, document.Format(format))
				if err != nil {
					return err
				}
				_, err = env.Out.Write(data)
				return err
			})
		},
	}
	get.Flags().StringVarP(&format, "format", "f", string(document.FormatYAML), "Output format (yaml, json)")
	get.Flags().BoolVar(&dump, "dump", false, "Dump the decoded Go record instead of the document")

	list := &cobra.Command{
		Use:   "list [type]",
		Short: "List stored record keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only string
			if len(args) == 1 {
				only = args[0]
			}
			return withStore(cmd, func(s *storage.Store) error {
				keys, err := s.List(cmd.Context(), only)
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintln(env.Out, key)
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <Type:ID>...",
		Short: "Remove stored records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]storage.RecordKey, len(args))
			for i, arg := range args {
				key, err := storage.ParseRecordKey(arg)
				if err != nil {
					return err
				}
				keys[i] = key
			}
			return withStore(cmd, func(s *storage.Store) error {
				for _, key := range keys {
					if err := s.Delete(cmd.Context(), key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.AddCommand(put, get, list, del)
	return cmd
}
