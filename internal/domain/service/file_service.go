package service

import (
	"context"
	"io"
)

// ProgressFunc receives upload progress as bytes are written to storage.
type ProgressFunc func(bytesTransferred, totalBytes int64)

type UploadResult struct {
	URL        string
	ObjectName string
	Size       int64
}

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, size int64, fileType, folder string, isPublic bool, progress ProgressFunc) (*UploadResult, error)
	DeleteFile(ctx context.Context, fileURL string) error
	GenerateSignedUploadURL(ctx context.Context, fileType, folder string, isPublic bool) (string, error)
	Close() error
}
