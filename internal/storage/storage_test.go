package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudcollector/internal/errors"
	"cloudcollector/models"
)

var collectedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecords() []models.ResourceCollection {
	return []models.ResourceCollection{
		{Service: "ec2", Region: "us-east-1", ResourceType: "instances", Resources: map[string]any{"Reservations": []any{}}, CollectedAt: collectedAt},
		{Service: "ec2", Region: "us-east-1", ResourceType: "vpcs", Resources: map[string]any{"Vpcs": []any{"vpc-1"}}, CollectedAt: collectedAt},
		{Service: "iam", Region: "global", ResourceType: "users", Resources: map[string]any{"Users": []any{}}, CollectedAt: collectedAt},
	}
}

func sampleMeta() models.Metadata {
	return models.Metadata{
		RunID:       uuid.MustParse("6f1c2a8e-94b1-4c1e-9d55-2b7a8f0e1c33"),
		GeneratedAt: collectedAt,
		Profile:     "prod",
		Regions:     []string{"us-east-1"},
		Services:    []string{"ec2", "iam"},
	}
}

type fakeObjects struct {
	mu        sync.Mutex
	buckets   map[string]bool
	objects   map[string][]byte
	existsErr error
	putErr    error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (f *fakeObjects) BucketExists(_ context.Context, bucket string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucket], nil
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestS3(f *fakeObjects) *S3Service {
	return &S3Service{client: f, open: f.open, log: zap.NewNop().Sugar()}
}

func TestS3Config_Validate(t *testing.T) {
	assert.NoError(t, S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"}.Validate())
	err := S3Config{Endpoint: "localhost:9000"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestS3Writer_WritesOneObjectPerGroup(t *testing.T) {
	f := newFakeObjects()
	w := &S3Writer{Service: newTestS3(f), Bucket: "inventory"}

	require.NoError(t, w.Write(context.Background(), sampleRecords(), sampleMeta()))

	assert.True(t, f.buckets["inventory"])
	require.Len(t, f.objects, 2)
	require.Contains(t, f.objects, "inventory/inventory/prod/ec2/us-east-1.json")
	require.Contains(t, f.objects, "inventory/inventory/prod/iam/global.json")

	g, err := w.Service.GetGroup(context.Background(), "inventory", "inventory/prod/ec2/us-east-1.json")
	require.NoError(t, err)
	assert.Equal(t, "ec2", g.Service)
	assert.Equal(t, "prod", g.Profile)
	assert.Equal(t, sampleMeta().RunID.String(), g.RunID)
	assert.Len(t, g.Resources, 2)
}

func TestS3Writer_Errors(t *testing.T) {
	t.Run("bucket check", func(t *testing.T) {
		f := newFakeObjects()
		f.existsErr = errors.New("access denied")
		w := &S3Writer{Service: newTestS3(f), Bucket: "inventory"}
		assert.Error(t, w.Write(context.Background(), sampleRecords(), sampleMeta()))
	})
	t.Run("put", func(t *testing.T) {
		f := newFakeObjects()
		f.putErr = errors.New("slow down")
		w := &S3Writer{Service: newTestS3(f), Bucket: "inventory"}
		assert.Error(t, w.Write(context.Background(), sampleRecords(), sampleMeta()))
	})
	t.Run("no records", func(t *testing.T) {
		f := newFakeObjects()
		w := &S3Writer{Service: newTestS3(f), Bucket: "inventory"}
		require.NoError(t, w.Write(context.Background(), nil, sampleMeta()))
		assert.Empty(t, f.buckets)
	})
}

func TestS3Service_GetGroupMissing(t *testing.T) {
	_, err := newTestS3(newFakeObjects()).GetGroup(context.Background(), "b", "inventory/x/y/z.json")
	assert.Error(t, err)
}

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresWriter(t *testing.T) {
	db := &fakeExecer{}
	w := &PostgresWriter{Store: &PostgresStore{db: db, log: zap.NewNop().Sugar()}}

	require.NoError(t, w.Write(context.Background(), sampleRecords(), sampleMeta()))

	require.Len(t, db.calls, 4)
	assert.Contains(t, db.calls[0].sql, "CREATE TABLE IF NOT EXISTS inventory_records")
	insert := db.calls[2]
	assert.Contains(t, insert.sql, "ON CONFLICT (run_id, service, region, resource_type)")
	require.Len(t, insert.args, 7)
	assert.Equal(t, sampleMeta().RunID.String(), insert.args[0])
	assert.Equal(t, "prod", insert.args[1])
	assert.Equal(t, "vpcs", insert.args[4])
	assert.JSONEq(t, `{"Vpcs":["vpc-1"]}`, string(insert.args[5].([]byte)))
}

func TestPostgresStore_SaveGroup(t *testing.T) {
	db := &fakeExecer{}
	s := &PostgresStore{db: db, log: zap.NewNop().Sugar()}
	g := models.GroupRecords(sampleRecords())[0]
	g.RunID = "run-1"
	g.Profile = "prod"

	require.NoError(t, s.SaveGroup(context.Background(), g))
	require.Len(t, db.calls, 2)
	assert.Equal(t, "run-1", db.calls[0].args[0])
	assert.Equal(t, "instances", db.calls[0].args[4])
}

func TestPostgresStore_ExecError(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection reset")}
	s := &PostgresStore{db: db, log: zap.NewNop().Sugar()}
	err := s.SaveRecords(context.Background(), "run-1", "prod", sampleRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ec2/us-east-1/instances")
	assert.Len(t, db.calls, 1)
}

func TestSQLiteStore_SaveRun(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	w := &SQLiteWriter{Store: store}
	require.NoError(t, w.Write(ctx, sampleRecords(), sampleMeta()))

	got, err := store.Records(ctx, sampleMeta().RunID.String())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ec2", got[0].Service)
	assert.Equal(t, "instances", got[0].ResourceType)
	assert.Equal(t, "iam", got[2].Service)
	assert.True(t, collectedAt.Equal(got[1].CollectedAt))

	payload, err := json.Marshal(got[1].Resources)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Vpcs":["vpc-1"]}`, string(payload))

	// saving again replaces the run's records
	require.NoError(t, store.SaveRun(ctx, sampleMeta(), sampleRecords()[:1]))
	got, err = store.Records(ctx, sampleMeta().RunID.String())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	none, err := store.Records(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_RejectsUnencodable(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	bad := []models.ResourceCollection{{Service: "ec2", Region: "r", ResourceType: "t", Resources: make(chan int)}}
	err = store.SaveRun(context.Background(), sampleMeta(), bad)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "serialize"))

	got, err := store.Records(context.Background(), sampleMeta().RunID.String())
	require.NoError(t, err)
	assert.Empty(t, got)
}
