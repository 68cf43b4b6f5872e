package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	config "github.com/craftsites/autopost/configs"
	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/pkg/utils"
)

// MirrorService re-hosts the sampled thumbnails on R2 so the published post
// references stable public URLs instead of media-store internals.
type MirrorService interface {
	MirrorImages(ctx context.Context, tenant string, images []models.MediaImage) []string
}

type mirrorService struct {
	cfg config.R2
}

func NewMirrorService(cfg config.R2) MirrorService {
	return &mirrorService{cfg: cfg}
}

func (s *mirrorService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.cfg.AccountID))
	}), nil
}

// MirrorImages uploads each image and returns the public URLs that made it.
// An individual upload failure drops that URL, not the post. Keys are
// prefixed with the upload instant so successive posts never collide.
func (s *mirrorService) MirrorImages(ctx context.Context, tenant string, images []models.MediaImage) []string {
	if len(images) == 0 {
		return nil
	}

	client, err := s.r2Client(ctx)
	if err != nil {
		return nil
	}

	batch := utils.PostID(time.Now())
	urls := make([]string, 0, len(images))
	for i, img := range images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			slog.Info("skipping image with bad payload", "file", img.SourceID)
			continue
		}

		key := fmt.Sprintf("posts/%s/%s/%d%s", tenant, batch, i, extFor(img.MimeType))
		input := &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(img.MimeType),
		}

		if _, err := client.PutObject(ctx, input); err != nil {
			slog.Info("skipping image after failed upload", "file", img.SourceID, "error", err.Error())
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicBase, "/"), key))
	}
	return urls
}

func extFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
