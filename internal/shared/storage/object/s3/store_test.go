package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/1.txt", want: "user/1.txt"},
		{name: "simple prefix", prefix: "root", key: "user/1.txt", want: "root/user/1.txt"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/1.txt", want: "root/user/1.txt"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/1.txt", want: "root/user/1.txt"},
		{name: "nested prefix", prefix: "root/sub", key: "user/1.txt", want: "root/sub/user/1.txt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.objects[aws.ToString(in.Key)]))}, nil
}

func TestPutAppliesPrefixAndEncryption(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "/extracted/", "")

	n, err := store.Put(context.Background(), "user/7.txt", "text/plain", bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes, got %d", n)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(fake.puts))
	}
	in := fake.puts[0]
	if aws.ToString(in.Key) != "extracted/user/7.txt" {
		t.Fatalf("unexpected key %q", aws.ToString(in.Key))
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %q", in.ServerSideEncryption)
	}

	rc, err := store.Open(context.Background(), "user/7.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestPutUsesKMSWhenConfigured(t *testing.T) {
	fake := &fakeS3{}
	store := NewWithClient(fake, "bucket", "", "kms-key")

	if _, err := store.Put(context.Background(), "k.txt", "", bytes.NewReader(nil)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	in := fake.puts[0]
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected SSE-KMS with key, got %q %q", in.ServerSideEncryption, aws.ToString(in.SSEKMSKeyId))
	}
}
