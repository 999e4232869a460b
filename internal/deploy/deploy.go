// Package deploy uploads the rendered site to an S3-compatible bucket.
package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/config"
)

// uploader is the slice of the S3 client the deployer needs.
type uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Deployer syncs a local directory to a bucket.
type Deployer struct {
	cfg    *config.DeployConfig
	client uploader
	logger *zap.Logger
}

// NewDeployer creates a deployer from the deploy configuration. A custom
// Endpoint routes to S3-compatible providers; static credentials are used
// when set, otherwise the default chain applies.
func NewDeployer(ctx context.Context, cfg *config.DeployConfig, logger *zap.Logger) (*Deployer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("deploy: bucket not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					SigningRegion:     cfg.Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("deploy: load aws config: %w", err)
	}
	return &Deployer{cfg: cfg, client: s3.NewFromConfig(awsCfg), logger: logger}, nil
}

// Sync uploads every file under dir to the bucket, preserving the relative
// layout under the configured prefix. It returns the number of uploaded
// objects.
func (d *Deployer) Sync(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := ObjectKey(d.cfg.Prefix, rel)
		if err := d.put(ctx, p, key); err != nil {
			return fmt.Errorf("deploy: upload %s: %w", rel, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}
	d.logger.Info("Deploy complete",
		zap.String("bucket", d.cfg.Bucket),
		zap.String("prefix", d.cfg.Prefix),
		zap.Int("objects", uploaded))
	return uploaded, nil
}

func (d *Deployer) put(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := ContentType(localPath)
	d.logger.Debug("Uploading object", zap.String("key", key), zap.String("contentType", contentType))
	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	return err
}

// ObjectKey joins the configured prefix with a relative file path using
// forward slashes, as S3 expects.
func ObjectKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ContentType maps a file name to its MIME type, with explicit entries for
// the types the site emits since the system table can be sparse.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".xml":
		return "application/xml"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
