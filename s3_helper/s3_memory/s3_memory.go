// Package s3_memory is an in-process S3 for tests. It answers the object calls the
// S3 data store makes with the same error codes S3 returns.
package s3_memory

import (
	"bytes"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var _ s3iface.S3API = (*Client)(nil)

// Client embeds s3iface.S3API so it satisfies the interface. Only the object
// calls are implemented, anything else panics.
type Client struct {
	s3iface.S3API

	mu      sync.Mutex
	buckets map[string]map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewClient(buckets ...string) *Client {
	m := &Client{buckets: make(map[string]map[string]memoryObject)}
	for _, b := range buckets {
		m.AddBucket(b)
	}
	return m
}

func (m *Client) AddBucket(bucket string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.buckets[bucket]; !exists {
		m.buckets[bucket] = make(map[string]memoryObject)
	}
}

// Object returns the stored bytes and content type of bucket/key.
func (m *Client) Object(bucket, key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][key]
	return obj.data, obj.contentType, ok
}

func (m *Client) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[aws.StringValue(in.Bucket)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}
	obj, ok := bucket[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
	}, nil
}

func (m *Client) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	var data []byte
	if in.Body != nil {
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, awserr.New(request.ErrCodeSerialization, "failed to read body", err)
		}
		data = b
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[aws.StringValue(in.Bucket)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}
	bucket[aws.StringValue(in.Key)] = memoryObject{data: data, contentType: aws.StringValue(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}
