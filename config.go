package s3fs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config represents the adapter configuration.
type Config struct {
	S3 struct {
		Region         string `yaml:"region"`
		Bucket         string `yaml:"bucket"`
		Endpoint       string `yaml:"endpoint"`
		ForcePathStyle bool   `yaml:"force_path_style"`
	} `yaml:"s3"`
	Adapter struct {
		Prefix   string `yaml:"prefix"`
		ListMode string `yaml:"list_mode"`
	} `yaml:"adapter"`
	Cache struct {
		Address string `yaml:"address"`
		TTL     int    `yaml:"ttl"`
	} `yaml:"cache"`
}

// LoadConfig loads the configuration from a file.
func LoadConfig(path string) (*Config, error) {
	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	// Parse the YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Set defaults
	if config.S3.Region == "" {
		config.S3.Region = "us-west-2"
	}
	if config.Adapter.ListMode == "" {
		config.Adapter.ListMode = "flat"
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = 3600
	}

	return &config, nil
}

// NewFromConfig builds a ready-to-use adapter from config: AWS session, S3
// client, adapter options, and the metadata cache. When a Redis address is
// configured but unreachable, caching degrades to a NoOpCache with a
// logged warning instead of failing construction.
func NewFromConfig(ctx context.Context, config *Config) (*CachedAdapter, error) {
	if config.S3.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.S3.Region),
	}
	if config.S3.Endpoint != "" {
		// MinIO/LocalStack-style deployments need an explicit endpoint.
		awsConfig.Endpoint = aws.String(config.S3.Endpoint)
	}
	if config.S3.ForcePathStyle {
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	log := logrus.StandardLogger()
	opts := []Option{WithLogger(log)}
	if config.Adapter.Prefix != "" {
		opts = append(opts, WithPrefix(config.Adapter.Prefix))
	}
	switch config.Adapter.ListMode {
	case "", "flat":
	case "hierarchical":
		opts = append(opts, WithListMode(ListModeHierarchical))
	default:
		return nil, fmt.Errorf("unknown list mode: %s", config.Adapter.ListMode)
	}
	adapter := New(NewS3Client(sess), config.S3.Bucket, opts...)

	// Create Redis cache or use NoOpCache if Redis is not available
	var cache MetadataCache = &NoOpCache{}
	if config.Cache.Address != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		redisCache, err := NewRedisCache(pingCtx, config.Cache.Address, config.Cache.TTL)
		if err != nil {
			log.WithError(err).Warn("failed to create Redis cache, continuing without caching")
		} else {
			cache = redisCache
			log.WithField("address", config.Cache.Address).Info("connected to Redis cache")
		}
	}

	return NewCachedAdapter(adapter, cache), nil
}
