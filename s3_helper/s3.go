package s3_helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/gologger"
	"github.com/danthegoodman1/obfuscator/utils"
)

var (
	logger = gologger.NewLogger()
)

type (
	S3Config struct {
		Region          string
		Endpoint        string
		ForcePathStyle  bool
		AccessKeyID     string
		SecretAccessKey string
		SessionToken    string
	}

	S3DataStore struct {
		client s3iface.S3API
	}
)

// NewS3DataStore builds a client from cfg. Without static keys the default
// credential chain (env, shared config, instance role) is used.
func NewS3DataStore(cfg S3Config) (*S3DataStore, error) {
	s3Config := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.ForcePathStyle {
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	return NewS3DataStoreWithClient(s3.New(s3Session)), nil
}

func NewS3DataStoreWithClient(client s3iface.S3API) *S3DataStore {
	return &S3DataStore{client: client}
}

func (s *S3DataStore) Get(ctx context.Context, loc datastore.Location) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	st := time.Now()
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, classifyError(loc, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &utils.TransportError{Code: utils.CodeUnknown, URI: loc.String(), Err: fmt.Errorf("error in io.ReadAll: %w", err)}
	}

	d := time.Since(st)
	logger.Debug().Str("uri", loc.String()).Int("bytes", len(b)).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded file from s3")
	return b, nil
}

func (s *S3DataStore) Put(ctx context.Context, loc datastore.Location, data []byte, contentType string) error {
	logger := zerolog.Ctx(ctx)

	input := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	st := time.Now()
	_, err := s.client.PutObjectWithContext(ctx, input)
	if err != nil {
		return classifyError(loc, err)
	}

	d := time.Since(st)
	logger.Debug().Str("uri", loc.String()).Int("bytes", len(data)).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")
	return nil
}

// classifyError turns an SDK error into the storage error taxonomy, keeping the provider code.
func classifyError(loc datastore.Location, err error) error {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return &utils.TransportError{Code: utils.CodeUnknown, URI: loc.String(), Err: err}
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return &utils.NotFoundError{URI: loc.String(), Err: err}
	default:
		logger.Debug().Str("code", aerr.Code()).Str("uri", loc.String()).Msg("s3 request failed")
		return &utils.TransportError{Code: aerr.Code(), URI: loc.String(), Err: err}
	}
}
