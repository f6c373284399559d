// Package storage holds the external sinks that persist an inventory run:
// S3-compatible object storage, Postgres and an embedded SQLite file.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/keys"
	"cloudcollector/internal/logging"
	"cloudcollector/models"
)

// S3Config locates an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Region is used when the bucket has to be created.
	Region string
}

// Validate reports missing connection settings.
func (c S3Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return errors.Newf("incomplete s3 configuration, missing %v", missing)
	}
	return nil
}

// objectClient is the subset of *minio.Client the service uses.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Service stores and loads inventory groups in S3-compatible storage.
type S3Service struct {
	client objectClient
	open   func(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	log    *zap.SugaredLogger
}

// NewS3Service connects to the endpoint in cfg.
func NewS3Service(cfg S3Config, logger *zap.SugaredLogger) (*S3Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MinIO client")
	}
	log := logging.Or(logger)
	log.Infow("connected to object storage", "endpoint", cfg.Endpoint)
	return &S3Service{
		client: client,
		open: func(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
			return client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
		},
		log: log,
	}, nil
}

// CreateBucket makes bucketName unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, bucketName, location string) error {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Wrapf(err, "error checking bucket %s", bucketName)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return errors.Wrapf(err, "failed to create bucket %s", bucketName)
	}
	s.log.Infow("created bucket", "bucket", bucketName, "location", location)
	return nil
}

// PutGroup stores g as JSON under objectKey, replacing any previous version.
func (s *S3Service) PutGroup(ctx context.Context, bucketName, objectKey string, g models.Group) error {
	data, err := json.Marshal(g)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal group %s/%s", g.Service, g.Region)
	}
	_, err = s.client.PutObject(ctx, bucketName, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to store object %s", objectKey)
	}
	s.log.Debugw("stored group", "bucket", bucketName, "key", objectKey, "bytes", len(data))
	return nil
}

// GetGroup loads the group stored at objectKey.
func (s *S3Service) GetGroup(ctx context.Context, bucketName, objectKey string) (*models.Group, error) {
	object, err := s.open(ctx, bucketName, objectKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get object %s", objectKey)
	}
	defer object.Close()

	var g models.Group
	dec := json.NewDecoder(object)
	dec.UseNumber()
	if err := dec.Decode(&g); err != nil {
		return nil, errors.Wrapf(err, "failed to decode object %s", objectKey)
	}
	return &g, nil
}

// S3Writer stores one object per (service, region) group under
// inventory/<profile>/<service>/<region>.json.
type S3Writer struct {
	Service *S3Service
	Bucket  string
	Region  string
}

func (w *S3Writer) Name() string { return "s3" }

func (w *S3Writer) Write(ctx context.Context, records []models.ResourceCollection, meta models.Metadata) error {
	if len(records) == 0 {
		return nil
	}
	if err := w.Service.CreateBucket(ctx, w.Bucket, w.Region); err != nil {
		return err
	}
	var errs []error
	for _, g := range models.GroupRecords(records) {
		g.RunID = meta.RunID.String()
		g.Profile = meta.Profile
		if err := w.Service.PutGroup(ctx, w.Bucket, keys.Group(meta.Profile, g), g); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
