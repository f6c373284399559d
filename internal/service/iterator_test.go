package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/keys"
)

type fakeSource struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []int64
}

func newFakeSource(msgs ...kafka.Message) *fakeSource {
	ch := make(chan kafka.Message, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	return &fakeSource{ch: ch}
}

func (f *fakeSource) Messages() <-chan kafka.Message { return f.ch }

func (f *fakeSource) CommitOffset(_ context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg.Offset)
	return nil
}

func (f *fakeSource) Committed() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.committed...)
}

func eventMessage(t *testing.T, offset int64, bucket string, objectKeys ...string) kafka.Message {
	t.Helper()
	info := notification.Info{}
	for _, k := range objectKeys {
		var e notification.Event
		e.EventName = "s3:ObjectCreated:Put"
		e.S3.Bucket.Name = bucket
		e.S3.Object.Key = k
		info.Records = append(info.Records, e)
	}
	value, err := json.Marshal(info)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func drain[T any](t *testing.T, ch <-chan *FetchedObject[T]) []*FetchedObject[T] {
	t.Helper()
	var got []*FetchedObject[T]
	timeout := time.After(2 * time.Second)
	for {
		select {
		case obj, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, obj)
		case <-timeout:
			t.Fatal("timed out draining iterator")
			return nil
		}
	}
}

func TestIterator_Objects(t *testing.T) {
	src := newFakeSource(
		eventMessage(t, 0, "inventory", "inventory/prod/ec2/us-east-1.json"),
		kafka.Message{Offset: 1, Value: []byte("not json")},
		eventMessage(t, 2, "inventory", "raw_data/other.json"),
		eventMessage(t, 3, "inventory", "inventory/prod/s3/us-east-1.json", "inventory/prod/rds/eu-west-1.json"),
	)
	loader := func(_ context.Context, bucket, key string) (string, error) {
		return bucket + ":" + key, nil
	}
	accept := func(key string) bool {
		_, ok := keys.ParseGroup(key)
		return ok
	}

	it := NewIterator[string](src, loader, WithKeyFilter(accept))
	got := drain(t, it.Objects(context.Background()))

	require.NoError(t, it.Err())
	require.Len(t, got, 3)
	assert.Equal(t, "inventory:inventory/prod/ec2/us-east-1.json", got[0].Data)
	assert.Equal(t, "inventory/prod/s3/us-east-1.json", got[1].Key)
	assert.Equal(t, "inventory/prod/rds/eu-west-1.json", got[2].Key)
	assert.Equal(t, []int64{0, 1, 2, 3}, src.Committed())
}

func TestIterator_UnescapesKeys(t *testing.T) {
	src := newFakeSource(eventMessage(t, 0, "b", "inventory/my%20profile/ec2/us-east-1.json"))
	loader := func(_ context.Context, _, key string) (string, error) { return key, nil }

	got := drain(t, NewIterator[string](src, loader).Objects(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "inventory/my profile/ec2/us-east-1.json", got[0].Data)
}

func TestIterator_LoadFailureStopsBeforeCommit(t *testing.T) {
	src := newFakeSource(
		eventMessage(t, 0, "b", "inventory/prod/iam/global.json"),
		eventMessage(t, 1, "b", "inventory/prod/ec2/us-east-1.json"),
		eventMessage(t, 2, "b", "inventory/prod/s3/us-east-1.json"),
	)
	loader := func(_ context.Context, _, key string) (string, error) {
		if key == "inventory/prod/ec2/us-east-1.json" {
			return "", errors.New("NoSuchKey")
		}
		return key, nil
	}

	it := NewIterator[string](src, loader)
	got := drain(t, it.Objects(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, "inventory/prod/iam/global.json", got[0].Data)
	// offsets 1 and 2 stay uncommitted so the group resumes at 1
	assert.Equal(t, []int64{0}, src.Committed())
	require.Error(t, it.Err())
	assert.Contains(t, it.Err().Error(), "inventory/prod/ec2/us-east-1.json")
}

func TestIterator_PartialNotificationNotCommitted(t *testing.T) {
	src := newFakeSource(eventMessage(t, 7, "b",
		"inventory/prod/s3/us-east-1.json",
		"inventory/prod/rds/eu-west-1.json",
	))
	loader := func(_ context.Context, _, key string) (string, error) {
		if key == "inventory/prod/rds/eu-west-1.json" {
			return "", errors.New("timeout")
		}
		return key, nil
	}

	it := NewIterator[string](src, loader)
	got := drain(t, it.Objects(context.Background()))
	assert.Len(t, got, 1)
	assert.Empty(t, src.Committed())
	assert.Error(t, it.Err())
}

func TestIterator_StopsOnCancel(t *testing.T) {
	src := &fakeSource{ch: make(chan kafka.Message)}
	ctx, cancel := context.WithCancel(context.Background())
	out := NewIterator[string](src, func(context.Context, string, string) (string, error) { return "", nil }).Objects(ctx)
	cancel()
	assert.Empty(t, drain(t, out))
}
