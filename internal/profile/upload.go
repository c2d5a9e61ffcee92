// internal/profile/upload.go
// Profile image storage: S3 in production, local disk in development

package profile

import (
    "bytes"
    "context"
    "fmt"
    "io"
    "net/http"
    "os"
    "path/filepath"
    "strings"

    "github.com/aws/aws-sdk-go/aws"
    "github.com/aws/aws-sdk-go/aws/session"
    "github.com/aws/aws-sdk-go/service/s3"
    "github.com/google/uuid"
)

// MaxImageSize bounds uploaded profile images
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
    "image/jpeg": ".jpg",
    "image/png":  ".png",
    "image/webp": ".webp",
    "image/gif":  ".gif",
}

// ImageStore persists image bytes and returns a public URL
type ImageStore interface {
    Put(ctx context.Context, folder string, data []byte, contentType string) (string, error)
    Delete(ctx context.Context, url string) error
    Owns(url string) bool
}

// readImage reads at most MaxImageSize bytes and sniffs the content type
func readImage(r io.Reader) ([]byte, string, error) {
    data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
    if err != nil {
        return nil, "", fmt.Errorf("failed to read image: %w", err)
    }
    if len(data) == 0 {
        return nil, "", ErrInvalidImage
    }
    if len(data) > MaxImageSize {
        return nil, "", ErrImageTooLarge
    }

    contentType := http.DetectContentType(data)
    if _, ok := imageExtensions[contentType]; !ok {
        return nil, "", ErrInvalidImage
    }
    return data, contentType, nil
}

func objectName(folder, contentType string) string {
    return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), imageExtensions[contentType])
}

// LocalImageStore writes images under a directory served at baseURL
type LocalImageStore struct {
    dir     string
    baseURL string
}

// NewLocalImageStore creates a disk backed store
func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
    return &LocalImageStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalImageStore) Put(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
    name := objectName(folder, contentType)
    path := filepath.Join(s.dir, filepath.FromSlash(name))

    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return "", fmt.Errorf("failed to create upload directory: %w", err)
    }
    if err := os.WriteFile(path, data, 0644); err != nil {
        return "", fmt.Errorf("failed to save image: %w", err)
    }
    return s.baseURL + "/" + name, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
    if !s.Owns(url) {
        return nil
    }
    rel := strings.TrimPrefix(url, s.baseURL+"/")
    if strings.Contains(rel, "..") {
        return fmt.Errorf("refusing to delete %s", url)
    }
    err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
    if err != nil && !os.IsNotExist(err) {
        return fmt.Errorf("failed to delete image: %w", err)
    }
    return nil
}

func (s *LocalImageStore) Owns(url string) bool {
    return strings.HasPrefix(url, s.baseURL+"/")
}

// S3ImageStore stores images in a public bucket
type S3ImageStore struct {
    client  *s3.S3
    bucket  string
    baseURL string
}

// NewS3ImageStore opens an AWS session for the bucket's region
func NewS3ImageStore(bucket, region string) (*S3ImageStore, error) {
    sess, err := session.NewSession(&aws.Config{
        Region: aws.String(region),
    })
    if err != nil {
        return nil, fmt.Errorf("failed to create AWS session: %w", err)
    }

    return &S3ImageStore{
        client:  s3.New(sess),
        bucket:  bucket,
        baseURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
    }, nil
}

func (s *S3ImageStore) Put(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
    key := objectName(folder, contentType)

    _, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
        Bucket:       aws.String(s.bucket),
        Key:          aws.String(key),
        Body:         bytes.NewReader(data),
        ContentType:  aws.String(contentType),
        CacheControl: aws.String("public, max-age=31536000"),
        ACL:          aws.String("public-read"),
    })
    if err != nil {
        return "", fmt.Errorf("failed to upload to S3: %w", err)
    }
    return s.baseURL + "/" + key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
    if !s.Owns(url) {
        return nil
    }
    _, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
        Bucket: aws.String(s.bucket),
        Key:    aws.String(strings.TrimPrefix(url, s.baseURL+"/")),
    })
    if err != nil {
        return fmt.Errorf("failed to delete from S3: %w", err)
    }
    return nil
}

func (s *S3ImageStore) Owns(url string) bool {
    return strings.HasPrefix(url, s.baseURL+"/")
}
