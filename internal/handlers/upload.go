package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	appConfig "github.com/shabeebkaip/polymerhub-backend/internal/config"
	"github.com/shabeebkaip/polymerhub-backend/pkg/utils"
)

// Attachments for file/image messages are proxied into S3-compatible object
// storage; the returned URL becomes the message body.

const maxAttachmentSize = 20 << 20 // 20 MB

var allowedAttachmentTypes = []string{
	"image/png", "image/jpeg", "image/webp", "image/gif",
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", // spec sheets
	"text/csv",
}

func getS3Client() (*s3.Client, error) {
	cfg := appConfig.AppConfig
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: cfg.S3Endpoint}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadAttachment handles POST /upload
func UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		file, header, err = c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid file field found"})
			return
		}
	}
	defer file.Close()

	if header.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attachment exceeds 20MB limit"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	allowed := false
	for _, t := range allowedAttachmentTypes {
		if strings.EqualFold(contentType, t) {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported attachment type: " + contentType})
		return
	}

	ext := filepath.Ext(header.Filename)
	key := fmt.Sprintf("chat-attachments/%s%s", utils.GenerateID(), ext)

	client, err := getS3Client()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to init storage client"})
		return
	}

	cfg := appConfig.AppConfig
	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(cfg.S3BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed: " + err.Error()})
		return
	}

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", cfg.S3Endpoint, cfg.S3BucketName)
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      fmt.Sprintf("%s/%s", publicURL, key),
		"key":      key,
		"mimetype": contentType,
		"size":     header.Size,
	})
}
