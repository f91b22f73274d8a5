package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mavenestudio/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidKey is returned for keys that are empty, absolute or climb out
// of the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// StorageProvider keeps lead archives and spreadsheet exports, and resolves
// public URLs for portfolio imagery.
type StorageProvider interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (*StoredObject, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error) // body, content type
	Remove(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// PublicURL is empty when the object is not publicly reachable
	PublicURL(key string) string
	Name() string
}

// StoredObject describes a written object
type StoredObject struct {
	Key         string
	Size        int64
	ContentType string
}

// Storage is the provider chosen at startup
var Storage StorageProvider

// InitializeStorage picks R2 when all credentials are set and the bucket
// answers, local disk otherwise.
func InitializeStorage(cfg *config.Config) {
	Storage = newStorage(cfg)
	log.Info().Str("backend", Storage.Name()).Msg("Storage ready")
}

func newStorage(cfg *config.Config) StorageProvider {
	opts := R2Options{
		AccountID: cfg.R2AccountID,
		AccessKey: cfg.R2AccessKeyID,
		SecretKey: cfg.R2SecretAccessKey,
		Bucket:    cfg.R2BucketName,
		PublicURL: cfg.R2PublicURL,
	}
	if !opts.complete() {
		return NewLocalStorage(cfg.UploadDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r2, err := NewR2Storage(ctx, opts)
	if err == nil {
		err = r2.ping(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Str("bucket", opts.Bucket).Msg("R2 unavailable, using local storage")
		return NewLocalStorage(cfg.UploadDir)
	}
	return r2
}

// cleanKey normalizes key to a slash-separated relative path
func cleanKey(key string) (string, error) {
	k := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || k == "." || strings.HasPrefix(k, "/") || k == ".." || strings.HasPrefix(k, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// cacheControlFor lets the CDN cache portfolio images while lead data stays
// out of shared caches.
func cacheControlFor(key string) string {
	if strings.HasPrefix(key, "portfolio/") {
		return "public, max-age=31536000, immutable"
	}
	return "private, no-store"
}

// R2Options are the Cloudflare R2 credentials and bucket
type R2Options struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // custom domain or r2.dev URL serving the bucket
}

func (o R2Options) complete() bool {
	return o.AccountID != "" && o.AccessKey != "" && o.SecretKey != "" && o.Bucket != ""
}

// R2Storage talks to R2 through its S3-compatible API
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

func NewR2Storage(ctx context.Context, opts R2Options) (*R2Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://" + opts.AccountID + ".r2.cloudflarestorage.com")
		o.UsePathStyle = true
	})
	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		publicURL: strings.TrimSuffix(opts.PublicURL, "/"),
	}, nil
}

func (r *R2Storage) Name() string { return "r2:" + r.bucket }

func (r *R2Storage) ping(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	return err
}

func (r *R2Storage) Put(ctx context.Context, key string, body []byte, contentType string) (*StoredObject, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String(cacheControlFor(k)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put %s: %w", k, err)
	}
	return &StoredObject{Key: k, Size: int64(len(body)), ContentType: contentType}, nil
}

func (r *R2Storage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, "", err
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(r.bucket), Key: aws.String(k)})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s: %w", k, err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

func (r *R2Storage) Remove(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(r.bucket), Key: aws.String(k)}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", k, err)
	}
	return nil
}

func (r *R2Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	req, err := r.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(r.bucket), Key: aws.String(k)},
		s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", k, err)
	}
	return req.URL, nil
}

func (r *R2Storage) PublicURL(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return r.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// LocalStorage keeps objects under a directory that is not served over HTTP
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (l *LocalStorage) Name() string { return "local:" + l.baseDir }

func (l *LocalStorage) fullPath(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.baseDir, filepath.FromSlash(k)), nil
}

// Put writes through a temp file and a rename. Files and directories are
// owner-only.
func (l *LocalStorage) Put(ctx context.Context, key string, body []byte, contentType string) (*StoredObject, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", key, err)
	}

	k, _ := cleanKey(key)
	return &StoredObject{Key: k, Size: int64(len(body)), ContentType: contentType}, nil
}

func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", key, err)
	}
	return f, ContentTypeFor(key), nil
}

// Remove ignores objects that are already gone
func (l *LocalStorage) Remove(ctx context.Context, key string) error {
	p, err := l.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SignedURL returns a file:// URL; local objects are only reachable from the
// machine running the server.
func (l *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func (l *LocalStorage) PublicURL(key string) string { return "" }

// ContentTypeFor guesses a content type from the key's extension
func ContentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// GenerateLeadArchiveKey creates the key of a lead's JSON archive,
// partitioned by submission month: leads/2026/10/<id>.json
func GenerateLeadArchiveKey(leadID string, submittedAt time.Time) string {
	return fmt.Sprintf("leads/%s/%s.json", submittedAt.UTC().Format("2006/01"), leadID)
}

// GenerateExportKey names an admin spreadsheet export uniquely within its day
func GenerateExportKey(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("exports/%s/leads-%s-%s.xlsx", now.Format("2006-01-02"), now.Format("150405"), uuid.NewString()[:8])
}
