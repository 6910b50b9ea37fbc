package uploader

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"shop_backend/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 商品图片等媒体文件的对象存储接口
type Uploader interface {
	UploadFile(file *multipart.FileHeader) (string, error)
}

type AliyunOSSUploader struct {
	client *oss.Client
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader() (*AliyunOSSUploader, error) {
	cfg := config.GlobalConfig.OSS
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("oss config missing")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		client: client,
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) UploadFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 目录按天分桶: products/YYYYMMDD/uuid.ext
	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("products/%s/%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)

	if err = u.bucket.PutObject(filename, src); err != nil {
		return "", err
	}

	// bucket 需为 public-read 或挂 CDN，私有桶应改为签名 URL
	url := fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, filename)
	return url, nil
}

// GlobalUploader instance
var GlobalUploader Uploader

func InitUploader() error {
	uploader, err := NewAliyunOSSUploader()
	if err != nil {
		return err
	}
	GlobalUploader = uploader
	return nil
}
