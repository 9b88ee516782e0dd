package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusthire/trusthire/internal/domain"
)

type fakeMinio struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeMinio) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (f *fakeMinio) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (f *fakeMinio) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[key] = data
	f.types[key] = opts.ContentType
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeMinio) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error) {
	return url.Parse("https://storage.example.com/" + bucket + "/" + key)
}

func pdfOfSize(n int) []byte {
	data := make([]byte, n)
	copy(data, "%PDF-1.7")
	return data
}

func TestUploadAcceptsPDF(t *testing.T) {
	api := newFakeMinio()
	store, err := NewResumeStore(context.Background(), api, "resumes")
	require.NoError(t, err)

	key, err := store.Upload(context.Background(), pdfOfSize(4<<20))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, "application/pdf", api.types[key])
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store, err := NewResumeStore(context.Background(), newFakeMinio(), "resumes")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), pdfOfSize(6<<20))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUploadRejectsPNG(t *testing.T) {
	store, err := NewResumeStore(context.Background(), newFakeMinio(), "resumes")
	require.NoError(t, err)

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 128)...)
	_, err = store.Upload(context.Background(), png)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSniffResumeType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
		ok   bool
	}{
		{"pdf", []byte("%PDF-1.4 rest"), "application/pdf", true},
		{"doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, "application/msword", true},
		{"docx", []byte{'P', 'K', 0x03, 0x04, 0x14}, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"plain text", []byte("hello"), "", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := SniffResumeType(c.data)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}
