// Package blob stores video statements as content-addressed objects in a gocloud.dev bucket.
//
// A video is addressed by the SHA-256 of its plaintext bytes ("sha256:<hex>") and kept
// under the key "videos/<hex>". When a keeper is configured the stored object is sealed
// with it; references and digests always describe the plaintext.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	cloudblob "gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Register bucket drivers
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	apperrors "github.com/allisson/vouch/internal/errors"
	"github.com/allisson/vouch/internal/signature"
)

const (
	keyPrefix = "videos/"

	metadataDigest = "sha256"
	metadataSealed = "sealed"
)

var (
	// ErrVideoNotFound indicates no object exists for the reference.
	ErrVideoNotFound = apperrors.Wrap(apperrors.ErrNotFound, "video not found")

	// ErrVideoTooLarge indicates the upload exceeds the configured maximum size.
	ErrVideoTooLarge = apperrors.Wrap(apperrors.ErrInvalidInput, "video exceeds maximum size")

	// ErrEmptyVideo indicates an upload without content.
	ErrEmptyVideo = apperrors.Wrap(apperrors.ErrInvalidInput, "video is empty")

	// ErrInvalidVideoRef indicates a reference that is not "sha256:<64 lowercase hex>".
	ErrInvalidVideoRef = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid video reference")
)

// Attributes describe a stored video.
type Attributes struct {
	Ref         string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Store is a content-addressed video store on top of a gocloud.dev bucket.
type Store struct {
	bucket  *cloudblob.Bucket
	keeper  Keeper
	maxSize int64
}

// NewStore wraps an opened bucket. keeper may be nil. maxSize <= 0 disables the size check.
func NewStore(bucket *cloudblob.Bucket, keeper Keeper, maxSize int64) *Store {
	return &Store{bucket: bucket, keeper: keeper, maxSize: maxSize}
}

// Open opens the bucket at bucketURL and, when keeperURL is not empty, the keeper used
// to seal videos at rest.
func Open(ctx context.Context, bucketURL, keeperURL string, maxSize int64) (*Store, error) {
	bucket, err := cloudblob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open video bucket: %w", err)
	}

	var keeper Keeper
	if keeperURL != "" {
		keeper, err = OpenKeeper(ctx, keeperURL)
		if err != nil {
			_ = bucket.Close()
			return nil, err
		}
	}

	return NewStore(bucket, keeper, maxSize), nil
}

// Put stores the video read from r and returns its reference. Storing the same content
// twice returns the same reference and rewrites the object, refreshing its modification
// time so orphan cleanup treats it as a fresh upload.
func (s *Store) Put(ctx context.Context, r io.Reader, contentType string) (*Attributes, error) {
	content, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}

	ref := signature.VideoRef(content)
	attrs := &Attributes{Ref: ref, ContentType: contentType, Size: int64(len(content))}

	key, err := objectKey(ref)
	if err != nil {
		return nil, err
	}

	sealed := "false"
	if s.keeper != nil {
		content, err = s.keeper.Encrypt(ctx, content)
		if err != nil {
			return nil, apperrors.WrapIO(err, "failed to seal video")
		}
		sealed = "true"
	}

	opts := &cloudblob.WriterOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			metadataDigest: strings.TrimPrefix(ref, signature.VideoRefPrefix),
			metadataSealed: sealed,
		},
	}
	if err := s.bucket.WriteAll(ctx, key, content, opts); err != nil {
		return nil, apperrors.WrapIO(err, "failed to store video")
	}

	return attrs, nil
}

// Get returns the plaintext video for ref. The caller closes the reader.
func (s *Store) Get(ctx context.Context, ref string) (io.ReadCloser, *Attributes, error) {
	key, err := objectKey(ref)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, nil, mapBucketError(err, "failed to open video")
	}

	attrs := &Attributes{
		Ref:         ref,
		ContentType: reader.ContentType(),
		Size:        reader.Size(),
		ModTime:     reader.ModTime(),
	}
	if s.keeper == nil {
		return reader, attrs, nil
	}

	defer func() {
		_ = reader.Close()
	}()

	sealed, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, apperrors.WrapIO(err, "failed to read video")
	}
	plaintext, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, nil, apperrors.WrapIO(err, "failed to unseal video")
	}
	attrs.Size = int64(len(plaintext))

	return io.NopCloser(bytes.NewReader(plaintext)), attrs, nil
}

// Exists reports whether a video is stored for ref.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := objectKey(ref)
	if err != nil {
		return false, err
	}

	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, apperrors.WrapIO(err, "failed to check video")
	}
	return exists, nil
}

// Stat returns the stored attributes of the video for ref.
func (s *Store) Stat(ctx context.Context, ref string) (*Attributes, error) {
	key, err := objectKey(ref)
	if err != nil {
		return nil, err
	}

	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, mapBucketError(err, "failed to stat video")
	}
	return &Attributes{Ref: ref, ContentType: attrs.ContentType, Size: attrs.Size, ModTime: attrs.ModTime}, nil
}

// List calls fn with the attributes of every stored video, stopping at the first error.
// Size is the stored size, which includes sealing overhead when a keeper is configured.
func (s *Store) List(ctx context.Context, fn func(attrs *Attributes) error) error {
	iter := s.bucket.List(&cloudblob.ListOptions{Prefix: keyPrefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return apperrors.WrapIO(err, "failed to list videos")
		}
		if obj.IsDir {
			continue
		}

		ref := signature.VideoRefPrefix + strings.TrimPrefix(obj.Key, keyPrefix)
		if _, err := signature.ParseVideoRef(ref); err != nil {
			continue
		}
		if err := fn(&Attributes{Ref: ref, Size: obj.Size, ModTime: obj.ModTime}); err != nil {
			return err
		}
	}
}

// Delete removes the video stored for ref.
func (s *Store) Delete(ctx context.Context, ref string) error {
	key, err := objectKey(ref)
	if err != nil {
		return err
	}

	if err := s.bucket.Delete(ctx, key); err != nil {
		return mapBucketError(err, "failed to delete video")
	}
	return nil
}

// Close releases the bucket and the keeper.
func (s *Store) Close() error {
	err := s.bucket.Close()
	if s.keeper != nil {
		err = errors.Join(err, s.keeper.Close())
	}
	return err
}

func (s *Store) readLimited(r io.Reader) ([]byte, error) {
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.WrapIO(err, "failed to read video")
	}
	if len(content) == 0 {
		return nil, ErrEmptyVideo
	}
	if s.maxSize > 0 && int64(len(content)) > s.maxSize {
		return nil, ErrVideoTooLarge
	}
	return content, nil
}

func objectKey(ref string) (string, error) {
	digest, err := signature.ParseVideoRef(ref)
	if err != nil {
		return "", ErrInvalidVideoRef
	}
	return keyPrefix + digest, nil
}

func mapBucketError(err error, message string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return ErrVideoNotFound
	}
	return apperrors.WrapIO(err, message)
}
