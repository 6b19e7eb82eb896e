package backup

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// fakeS3 is an in-memory bucket that pages list results two keys at a time.
type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	modified     time.Time
	getErr       error
	listCalls    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
		modified:     time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.contentTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listCalls++

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[k]))),
			LastModified: aws.Time(f.modified),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestS3Store_PutGet(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{client: fake, bucket: "backups"}
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "liftlog/a.csv", []byte("WORKOUT_GROUPS\n"), core.ContentTypeCSV))
	assert.Equal(t, core.ContentTypeCSV, fake.contentTypes["liftlog/a.csv"])

	body, err := store.Get(ctx, "liftlog/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "WORKOUT_GROUPS\n", string(body))
}

func TestS3Store_GetMissing(t *testing.T) {
	store := &S3Store{client: newFakeS3(), bucket: "backups"}

	_, err := store.Get(context.Background(), "nope.csv")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestS3Store_GetFailure(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("connection refused")
	store := &S3Store{client: fake, bucket: "backups"}

	_, err := store.Get(context.Background(), "a.csv")
	require.Error(t, err)
	assert.Equal(t, core.KindInternal, core.KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestS3Store_ListPages(t *testing.T) {
	fake := newFakeS3()
	store := &S3Store{client: fake, bucket: "backups"}
	ctx := context.Background()

	for _, key := range []string{"liftlog/1.csv", "liftlog/2.csv", "liftlog/3.csv", "other/4.csv"} {
		require.NoError(t, store.Put(ctx, key, []byte(key), core.ContentTypeCSV))
	}

	objects, err := store.List(ctx, "liftlog/")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, 2, fake.listCalls)

	assert.Equal(t, "liftlog/1.csv", objects[0].Key)
	assert.Equal(t, int64(len("liftlog/1.csv")), objects[0].Size)
	assert.Equal(t, fake.modified, objects[0].LastModified)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}
