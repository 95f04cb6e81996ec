package oss

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"

	"momentoamor_backend/internals/configs"
)

// OSSService wraps one bucket plus the public URL scheme for stored objects.
type OSSService struct {
	bucket     *alioss.Bucket
	publicBase string
	prefix     string
}

func NewOSSService(cfg configs.OSSConfig) (*OSSService, error) {
	client, err := alioss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %q: %w", cfg.Bucket, err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
		base = fmt.Sprintf("https://%s.%s", cfg.Bucket, endpoint)
	}

	return &OSSService{
		bucket:     bucket,
		publicBase: base,
		prefix:     strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// UploadBytes stores data under prefix/key and returns the public URL.
func (s *OSSService) UploadBytes(key string, data []byte, contentType string) (string, error) {
	objectKey := key
	if s.prefix != "" {
		objectKey = s.prefix + "/" + key
	}
	err := s.bucket.PutObject(objectKey, bytes.NewReader(data),
		alioss.ContentType(contentType),
		alioss.ObjectACL(alioss.ACLPublicRead),
	)
	if err != nil {
		return "", fmt.Errorf("oss put %q: %w", objectKey, err)
	}
	return s.publicBase + "/" + objectKey, nil
}

// DeleteByPublicURL best-effort removes an object given its public URL.
func (s *OSSService) DeleteByPublicURL(publicURL string) error {
	u, err := url.Parse(publicURL)
	if err != nil {
		return err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return fmt.Errorf("oss delete: empty object key in %q", publicURL)
	}
	return s.bucket.DeleteObject(key)
}
