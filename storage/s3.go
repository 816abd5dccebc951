package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// "http://127.0.0.1:9000" for a local minio, empty for real AWS.
	EndpointURL string
	// "us-east-1"
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// Key prefix for the channel files, e.g. "reviews/supervised".
	Prefix string
}

// ConfigFromEnv reads the S3 settings from the environment.
func ConfigFromEnv() Config {
	return Config{
		EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
		Region:      os.Getenv("S3_REGION"),
		AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		SecretKey:   os.Getenv("S3_SECRET_KEY"),
		Bucket:      os.Getenv("S3_BUCKET"),
		Prefix:      os.Getenv("S3_PREFIX"),
	}
}

// Connect to the S3 (or minio) endpoint.
func Connect(cfg Config) *s3.Client {
	client := s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	})
	return client
}

// Uploader moves the prepared channel files into the bucket the training
// service reads from.
type Uploader struct {
	S3Client *s3.Client
	cfg      Config
	uploader *manager.Uploader
}

func NewUploader(s3Client *s3.Client, cfg Config) (*Uploader, error) {
	if s3Client == nil {
		return nil, fmt.Errorf("s3Client parameter can't be nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name can't be empty")
	}
	return &Uploader{
		S3Client: s3Client,
		cfg:      cfg,
		uploader: manager.NewUploader(s3Client),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist yet.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(u.cfg.Bucket),
	}
	// us-east-1 is the default location and must not be sent as a constraint.
	if u.cfg.Region != "" && u.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(u.cfg.Region),
		}
	}

	_, err := u.S3Client.CreateBucket(ctx, input)
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		var exists *s3types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("couldn't create bucket %s in Region %s, details: %v", u.cfg.Bucket, u.cfg.Region, err)
	}
	return nil
}

// ObjectURL is the s3:// location handed to the training service.
func (u *Uploader) ObjectURL(key string) string {
	return "s3://" + u.cfg.Bucket + "/" + u.key(key)
}

func (u *Uploader) key(name string) string {
	if u.cfg.Prefix == "" {
		return name
	}
	return path.Join(u.cfg.Prefix, name)
}

// UploadFile streams one local file to the bucket and returns its object URL.
func (u *Uploader) UploadFile(ctx context.Context, name, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s for upload: %w", localPath, err)
	}
	defer f.Close()

	key := u.key(name)
	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to s3://%s/%s: %w", localPath, u.cfg.Bucket, key, err)
	}

	log.Printf("Uploaded %s to s3://%s/%s", localPath, u.cfg.Bucket, key)
	return u.ObjectURL(name), nil
}

// UploadChannelFiles makes sure the bucket exists, then pushes the train
// and validation files concurrently.
func (u *Uploader) UploadChannelFiles(ctx context.Context, trainPath, valPath string) (trainURL, valURL string, err error) {
	if err := u.EnsureBucket(ctx); err != nil {
		return "", "", err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var uerr error
		trainURL, uerr = u.UploadFile(gctx, "reviews.train", trainPath)
		return uerr
	})
	g.Go(func() error {
		var uerr error
		valURL, uerr = u.UploadFile(gctx, "reviews.validation", valPath)
		return uerr
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return trainURL, valURL, nil
}
