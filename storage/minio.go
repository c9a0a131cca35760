// storage/minio.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageStore 每个条目绑定唯一一张图片，对象键由 (user, item) 决定，
// 重复上传直接覆盖同一个键。
type ImageStore struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
}

// NewImageStore 初始化客户端，桶不存在就创建
func NewImageStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		log.Printf("[storage] created bucket %s", bucket)
	}

	log.Printf("[storage] MinIO client ready, endpoint=%s bucket=%s", endpoint, bucket)
	return &ImageStore{client: client, bucket: bucket, urlTTL: 7 * 24 * time.Hour}, nil
}

// 对象键固定，方便覆盖和删除时不用解析 URL
func objectName(userID, itemID string) string {
	return fmt.Sprintf("food-items/%s/%s.jpg", userID, itemID)
}

// Upload 上传并返回可下载的预签名 URL
func (s *ImageStore) Upload(ctx context.Context, userID, itemID string, r io.Reader, size int64, contentType string) (string, error) {
	name := objectName(userID, itemID)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"user-id": userID,
			"item-id": itemID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("minio upload: %w", err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, name, s.urlTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("minio presign: %w", err)
	}
	return presigned.String(), nil
}

// Delete 幂等：对象不存在不算错误（MinIO RemoveObject 对缺失对象返回 nil）
func (s *ImageStore) Delete(ctx context.Context, userID, itemID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName(userID, itemID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("minio delete: %w", err)
	}
	return nil
}
