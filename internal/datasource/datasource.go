// Package datasource abstracts where dataset bytes come from. Parsers read
// from the io.ReadCloser a Source opens; they never know whether it is a
// local file or an HTTP download.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Source opens a byte stream. Callers must close what Open returns.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ReadAll opens src and reads it to the end. Formats that need random
// access (Parquet) go through here.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("datasource: read: %w", err)
	}
	return b, nil
}
