// Package s3 implements the record store on Amazon S3 or any compatible
// object store (MinIO, Localstack).
//
// The object layout mirrors the filesystem backend: one JSON object per
// record under <prefix><user>/<id>.json, with bucket listings as the
// authoritative collection enumeration.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// S3RecordStore implements store.RecordStore over an S3 bucket.
//
// Thread safety: the S3 client is safe for concurrent use. Object-level
// last-writer-wins semantics match the filesystem backend's overwrite
// behavior.
type S3RecordStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// S3RecordStoreConfig holds the dependencies for the S3 backend. The client
// is injected so the config factory owns AWS credential and endpoint wiring.
type S3RecordStoreConfig struct {
	Client    *s3.Client
	Bucket    string
	KeyPrefix string
}

// NewS3RecordStore creates an S3-backed record store. It performs no network
// call; a misconfigured bucket surfaces on first use.
func NewS3RecordStore(ctx context.Context, cfg S3RecordStoreConfig) (*S3RecordStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 record store: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 record store: bucket is required")
	}

	return &S3RecordStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3RecordStore) userPrefix(user string) string {
	return s.keyPrefix + user + "/"
}

func (s *S3RecordStore) recordKey(user string, id int) string {
	return s.userPrefix(user) + strconv.Itoa(id) + ".json"
}

// LoadAll lists the user's prefix and fetches every object concurrently.
// Objects that cannot be fetched or decoded are skipped; only the listing
// itself failing fails the call. Results land in completion order.
func (s *S3RecordStore) LoadAll(ctx context.Context, user string) ([]funko.Funko, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.userPrefix(user)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logger.Error("Failed to list collection for user %q: %v", user, err)
			return nil, store.Unavailable("collection unreadable", user)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records = make([]funko.Funko, 0, len(keys))
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()

			f, err := s.fetchRecord(ctx, key)
			if err != nil {
				logger.Warn("Skipping unreadable record %q for user %q: %v", key, user, err)
				return
			}

			mu.Lock()
			records = append(records, *f)
			mu.Unlock()
		}(key)
	}

	wg.Wait()
	return records, nil
}

// fetchRecord downloads and decodes a single record object.
func (s *S3RecordStore) fetchRecord(ctx context.Context, key string) (*funko.Funko, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, err
	}

	var f funko.Funko
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	return &f, nil
}

// Save uploads the record, replacing any object with the same key.
func (s *S3RecordStore) Save(ctx context.Context, user string, f *funko.Funko) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return store.IOError("failed to encode record", user)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.recordKey(user, f.ID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		logger.Error("Failed to write record %d for user %q: %v", f.ID, user, err)
		return store.IOError("failed to write record", user)
	}

	return nil
}

// Delete removes the record's object. S3 deletes are silently idempotent, so
// a HEAD first makes absence fail like the other backends.
func (s *S3RecordStore) Delete(ctx context.Context, user string, id int) error {
	key := s.recordKey(user, id)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Debug("Record %d for user %q not found: %v", id, user, err)
		return store.NotFound("record not found or could not be deleted", user)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Debug("Failed to remove record %d for user %q: %v", id, user, err)
		return store.NotFound("record not found or could not be deleted", user)
	}

	return nil
}
