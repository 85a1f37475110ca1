package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"partyhaus/internal/domain"
)

// S3Config holds configuration for the S3 object store.
type S3Config struct {
	Region        string
	Bucket        string
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string
}

// StoreConfig holds configuration for creating an object store.
type StoreConfig struct {
	Provider string
	S3       S3Config
}

// NewObjectStore creates an object store from config. Provider "s3" uses AWS
// S3; "memory" or unknown keeps objects in process memory.
func NewObjectStore(config StoreConfig) (domain.ObjectStore, error) {
	switch config.Provider {
	case "s3":
		s3Config := config.S3
		if s3Config.Bucket == "" {
			return nil, fmt.Errorf("s3 object store requires a bucket")
		}
		awsCfg := aws.Config{
			Region: s3Config.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					s3Config.AccessKeyID,
					s3Config.SecretKey,
					"",
				),
			),
		}
		baseURL := s3Config.PublicBaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s3Config.Bucket, s3Config.Region)
		}
		return &s3Store{
			client:  s3.NewFromConfig(awsCfg),
			bucket:  s3Config.Bucket,
			baseURL: strings.TrimRight(baseURL, "/"),
		}, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		log.Printf("[STORAGE] Unknown storage provider %q, using memory", config.Provider)
		return NewMemoryStore(), nil
	}
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func (s *s3Store) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

// memoryStore keeps objects in a map. Suitable for development and tests only.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	m.objects[key] = buf
	return "memory://" + key, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Get returns a stored object. Test helper for the memory provider.
func (m *memoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}
