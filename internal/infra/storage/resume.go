package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/trusthire/trusthire/internal/domain"
)

// MaxResumeSize is the upload cap for resume files.
const MaxResumeSize = 5 << 20

const presignExpiry = 15 * time.Minute

// minioAPI is the subset of *minio.Client the store needs, split out
// so tests can run without an object-storage server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)
}

// ResumeStore keeps resume attachments in an object bucket. Uploads
// are gated on size and on sniffed content type, never on the file
// extension the client claims.
type ResumeStore struct {
	api    minioAPI
	bucket string
}

func NewResumeStore(ctx context.Context, api minioAPI, bucket string) (*ResumeStore, error) {
	s := &ResumeStore{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return s, nil
}

// Upload validates and stores a resume, returning the object key.
func (s *ResumeStore) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ValidationError{Field: "resume", Reason: "empty file"}
	}
	if len(data) > MaxResumeSize {
		return "", domain.ValidationError{Field: "resume", Reason: "file exceeds 5MB"}
	}

	contentType, ok := SniffResumeType(data)
	if !ok {
		return "", domain.ValidationError{Field: "resume", Reason: "only PDF, DOC and DOCX are accepted"}
	}

	key := "resumes/" + uuid.NewString()
	_, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	return key, nil
}

// URL returns a short-lived presigned GET link for a stored resume.
func (s *ResumeStore) URL(ctx context.Context, key string) (string, error) {
	u, err := s.api.PresignedGetObject(ctx, s.bucket, key, presignExpiry, nil)
	if err != nil {
		return "", domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return u.String(), nil
}

// SniffResumeType detects PDF, legacy DOC (OLE container) and DOCX
// (zip container) from leading magic bytes.
func SniffResumeType(data []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return "application/pdf", true
	case bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}):
		return "application/msword", true
	case bytes.HasPrefix(data, []byte{'P', 'K', 0x03, 0x04}):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true
	}
	return "", false
}
