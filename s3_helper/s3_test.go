package s3_helper

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/danthegoodman1/obfuscator/datastore"
	"github.com/danthegoodman1/obfuscator/s3_helper/s3_memory"
	"github.com/danthegoodman1/obfuscator/utils"
)

// failingS3 returns err from every object call.
type failingS3 struct {
	s3iface.S3API
	err error
}

func (f *failingS3) GetObjectWithContext(aws.Context, *s3.GetObjectInput, ...request.Option) (*s3.GetObjectOutput, error) {
	return nil, f.err
}

func (f *failingS3) PutObjectWithContext(aws.Context, *s3.PutObjectInput, ...request.Option) (*s3.PutObjectOutput, error) {
	return nil, f.err
}

func TestS3DataStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := s3_memory.NewClient("bucket")
	s := NewS3DataStoreWithClient(mem)
	loc := datastore.Location{Scheme: "s3", Bucket: "bucket", Key: "dir/data.parquet"}

	if err := s.Put(ctx, loc, []byte("PAR1"), "application/vnd.apache.parquet"); err != nil {
		t.Fatal(err)
	}
	b, err := s.Get(ctx, loc)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "PAR1" {
		t.Fatalf("got %q", b)
	}
	if _, ct, _ := mem.Object("bucket", "dir/data.parquet"); ct != "application/vnd.apache.parquet" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestS3DataStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := NewS3DataStoreWithClient(s3_memory.NewClient("bucket"))

	var nfe *utils.NotFoundError
	if _, err := s.Get(ctx, datastore.Location{Scheme: "s3", Bucket: "bucket", Key: "nope.csv"}); !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := s.Get(ctx, datastore.Location{Scheme: "s3", Bucket: "other", Key: "nope.csv"}); utils.TransportCode(err) != utils.CodeNoSuchBucket {
		t.Fatalf("expected NoSuchBucket, got %v", err)
	}
	if err := s.Put(ctx, datastore.Location{Scheme: "s3", Bucket: "other", Key: "x.csv"}, nil, ""); utils.TransportCode(err) != utils.CodeNoSuchBucket {
		t.Fatalf("expected NoSuchBucket, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	loc := datastore.Location{Scheme: "s3", Bucket: "b", Key: "k.json"}
	tests := []struct {
		name     string
		err      error
		notFound bool
		code     string
	}{
		{"head not found", awserr.New("NotFound", "Not Found", nil), true, ""},
		{"access denied", awserr.New("AccessDenied", "Access Denied", nil), false, "AccessDenied"},
		{"wrapped request failure", awserr.NewRequestFailure(awserr.New("InvalidAccessKeyId", "bad key", nil), 403, "req"), false, "InvalidAccessKeyId"},
		{"plain error", errors.New("connection refused"), false, utils.CodeUnknown},
	}
	for _, tt := range tests {
		s := NewS3DataStoreWithClient(&failingS3{err: tt.err})
		_, err := s.Get(context.Background(), loc)

		var nfe *utils.NotFoundError
		if errors.As(err, &nfe) != tt.notFound {
			t.Fatalf("%s: not found = %v, got %v", tt.name, !tt.notFound, err)
		}
		if utils.TransportCode(err) != tt.code {
			t.Fatalf("%s: code = %q, want %q", tt.name, utils.TransportCode(err), tt.code)
		}
		if perr := s.Put(context.Background(), loc, []byte("{}"), ""); utils.TransportCode(perr) != tt.code {
			t.Fatalf("%s: put code = %q, want %q", tt.name, utils.TransportCode(perr), tt.code)
		}
	}
}

func TestS3DataStoreBucketAddedLater(t *testing.T) {
	ctx := context.Background()
	mem := s3_memory.NewClient()
	var client s3iface.S3API = mem
	s := NewS3DataStoreWithClient(client)
	loc := datastore.Location{Scheme: "s3", Bucket: "late", Key: "out.csv"}

	if err := s.Put(ctx, loc, []byte("a\n1\n"), "text/csv"); utils.TransportCode(err) != utils.CodeNoSuchBucket {
		t.Fatalf("expected NoSuchBucket before the bucket exists, got %v", err)
	}
	mem.AddBucket("late")
	if err := s.Put(ctx, loc, []byte("a\n1\n"), "text/csv"); err != nil {
		t.Fatal(err)
	}
	if b, _, ok := mem.Object("late", "out.csv"); !ok || string(b) != "a\n1\n" {
		t.Fatalf("got %q, %v", b, ok)
	}
}
