package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/funkostore/pkg/store"
	storeBadger "github.com/marmos91/funkostore/pkg/store/badger"
	storeFs "github.com/marmos91/funkostore/pkg/store/fs"
	storeMemory "github.com/marmos91/funkostore/pkg/store/memory"
	storeS3 "github.com/marmos91/funkostore/pkg/store/s3"
)

// CreateRecordStore creates a record store based on configuration.
//
// The Type field selects the backend; the matching type-specific option map
// is decoded into the backend's option struct and handed to its constructor.
//
// Supported types:
//   - "fs": one JSON file per record under a per-user directory
//   - "memory": process memory, no persistence
//   - "badger": embedded BadgerDB database
//   - "s3": Amazon S3 or compatible object storage
func CreateRecordStore(ctx context.Context, cfg *StoreConfig) (store.RecordStore, error) {
	switch cfg.Type {
	case "fs":
		return createFSRecordStore(ctx, cfg.FS)
	case "memory":
		return storeMemory.NewMemoryRecordStore(), nil
	case "badger":
		return createBadgerRecordStore(ctx, cfg.Badger)
	case "s3":
		return createS3RecordStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown record store type: %q", cfg.Type)
	}
}

// createFSRecordStore creates the filesystem-backed record store.
func createFSRecordStore(ctx context.Context, options map[string]any) (store.RecordStore, error) {
	type FSRecordStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FSRecordStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode fs record store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("fs record store: path is required")
	}

	recordStore, err := storeFs.NewFSRecordStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create fs record store: %w", err)
	}

	return recordStore, nil
}

// createBadgerRecordStore creates the BadgerDB-backed record store.
func createBadgerRecordStore(ctx context.Context, options map[string]any) (store.RecordStore, error) {
	type BadgerRecordStoreConfig struct {
		Path     string `mapstructure:"path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeCfg BadgerRecordStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger record store config: %w", err)
	}

	if storeCfg.Path == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger record store: path is required")
	}

	recordStore, err := storeBadger.NewBadgerRecordStore(ctx, storeBadger.BadgerRecordStoreConfig{
		Path:     storeCfg.Path,
		InMemory: storeCfg.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger record store: %w", err)
	}

	return recordStore, nil
}

// createS3RecordStore creates the S3-backed record store.
func createS3RecordStore(ctx context.Context, options map[string]any) (store.RecordStore, error) {
	type S3RecordStoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3RecordStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode s3 record store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("s3 record store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("s3 record store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint for MinIO, Localstack, etc.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, default credential chain otherwise.
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing is required by most S3-compatible stores
		o.UsePathStyle = storeCfg.Endpoint != ""
	})

	recordStore, err := storeS3.NewS3RecordStore(ctx, storeS3.S3RecordStoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 record store: %w", err)
	}

	return recordStore, nil
}
