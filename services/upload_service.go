package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quizsystem/apperrors"
	"quizsystem/logger"

	"github.com/google/uuid"
)

// UploadService stores uploaded question and answer images under a
// generated unique name and hands back a retrievable relative URL.
type UploadService struct {
	uploadDir string
	log       *logger.Logger
}

func NewUploadService(uploadDir string, log *logger.Logger) *UploadService {
	return &UploadService{uploadDir: uploadDir, log: log}
}

type UploadResult struct {
	ImageURL string `json:"image_url"`
	Filename string `json:"filename"`
}

func (s *UploadService) SaveImage(fileHeader *multipart.FileHeader) (*UploadResult, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperrors.Validation("only image files are allowed")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, apperrors.Internal("failed to create upload directory", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	if ext == "" {
		ext = "png"
	}
	filename := fmt.Sprintf("%d_%.8s.%s", time.Now().Unix(), uuid.New().String(), ext)

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Internal("failed to read upload", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return nil, apperrors.Internal("failed to store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, apperrors.Internal("failed to store upload", err)
	}

	s.log.Infow("image uploaded", "filename", filename, "size", fileHeader.Size)
	return &UploadResult{
		ImageURL: "/" + filepath.ToSlash(filepath.Join(s.uploadDir, filename)),
		Filename: filename,
	}, nil
}
