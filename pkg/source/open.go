package source

import (
	"context"
	"fmt"
)

// Backend kinds accepted by Open
const (
	KindPostgres = "postgres"
	KindFile     = "file"
	KindS3       = "s3"
	KindMemory   = "memory"
)

// Spec selects and locates a backend.
type Spec struct {
	Kind        string
	DatabaseURL string
	Path        string
	Bucket      string
	Key         string
	Region      string
	Endpoint    string
}

// Open connects to the backend described by spec. Snapshot backends (file
// and s3) are read fully before Open returns.
func Open(ctx context.Context, spec Spec) (FlowSource, error) {
	switch spec.Kind {
	case KindPostgres:
		src, err := NewPGSource(ctx, spec.DatabaseURL, DefaultPGOptions())
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindFile:
		src, err := NewFileSource(spec.Path)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindS3:
		client, err := NewS3Client(ctx, S3Config{
			Bucket:   spec.Bucket,
			Key:      spec.Key,
			Region:   spec.Region,
			Endpoint: spec.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		src, err := NewS3Source(ctx, client, spec.Bucket, spec.Key)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindMemory, "":
		return NewMemorySource(nil), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", spec.Kind)
}
