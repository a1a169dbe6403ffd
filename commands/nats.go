package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semcodec/graph"
	"github.com/c360studio/semcodec/storage"
)

// Dialer opens a publishing connection. The returned close function flushes
// pending messages and releases the connection.
type Dialer func(url string, timeout time.Duration) (graph.Conn, func() error, error)

// DialNATS connects to a NATS server.
func DialNATS(url string, timeout time.Duration) (graph.Conn, func() error, error) {
	opts := []nats.Option{nats.Name("semcodec")}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, wrapNATSError(err, url)
	}

	closeFn := func() error {
		defer nc.Close()
		if timeout > 0 {
			return nc.FlushTimeout(timeout)
		}
		return nc.Flush()
	}
	return nc, closeFn, nil
}

// BucketOpener opens the record bucket. The returned close function releases
// the connection.
type BucketOpener func(ctx context.Context, url string, timeout time.Duration, bucket string) (storage.KeyValue, func(), error)

// OpenNATSBucket connects to NATS and opens bucket through JetStream,
// creating it when missing.
func OpenNATSBucket(ctx context.Context, url string, timeout time.Duration, bucket string) (storage.KeyValue, func(), error) {
	opts := []nats.Option{nats.Name("semcodec")}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, wrapNATSError(err, url)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	kv, err := storage.OpenBucket(ctx, js, bucket)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return kv, nc.Close, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	if errors.Is(err, nats.ErrNoServers) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker run -d -p 4222:4222 nats

Or set SEMCODEC_NATS_URL to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
