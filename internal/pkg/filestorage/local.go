package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/hireloop/internal/pkg/logger"
)

// MaxResumeSize is the upload limit for resumes
const MaxResumeSize int64 = 10 << 20

// ResumeDir is the storage subdirectory for resumes
const ResumeDir = "resumes"

var (
	ErrEmptyFile       = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveResume validates and stores a resume, returning its public path
	SaveResume(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath stores a file under a subdirectory
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by a Save method
	DeleteFile(fileURL string) error

	// GetFullPath returns the filesystem path for a stored file URL
	GetFullPath(fileURL string) string
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory on disk
	baseURL  string // public prefix, e.g. http://host/uploads
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// ValidateResume checks extension and size of an uploaded resume
func ValidateResume(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil || fileHeader.Size == 0 {
		return ErrEmptyFile
	}
	if fileHeader.Size > MaxResumeSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, fileHeader.Size, MaxResumeSize)
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !resumeExtensions[ext] {
		return fmt.Errorf("%w: %q (allowed: pdf, doc, docx)", ErrUnsupportedType, ext)
	}
	return nil
}

// SaveResume validates and stores a resume under the resumes directory
func (ls *LocalStorage) SaveResume(fileHeader *multipart.FileHeader) (string, error) {
	if err := ValidateResume(fileHeader); err != nil {
		return "", err
	}
	return ls.SaveFileWithPath(fileHeader, ResumeDir)
}

// SaveFileWithPath saves a file to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", ErrEmptyFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	subPath = cleanSubPath(subPath)
	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := path.Join(subPath, uniqueFilename)
	var accessiblePath string
	if ls.baseURL != "" {
		accessiblePath = ls.baseURL + "/" + rel
	} else {
		accessiblePath = path.Join("/uploads", rel)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("accessible_path", accessiblePath).Msg("File saved successfully")
	return accessiblePath, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath maps a public URL back to the file on disk, keeping the subdirectory
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := fileURL
	switch {
	case ls.baseURL != "" && strings.HasPrefix(rel, ls.baseURL+"/"):
		rel = strings.TrimPrefix(rel, ls.baseURL+"/")
	case strings.HasPrefix(rel, "/uploads/"):
		rel = strings.TrimPrefix(rel, "/uploads/")
	default:
		rel = path.Base(rel)
	}

	rel = path.Clean("/" + rel)[1:]
	if rel == "" || rel == "." {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}

func cleanSubPath(subPath string) string {
	if subPath == "" {
		return ""
	}
	// path.Clean on a rooted path strips any ".." escaping the root
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(subPath)), "/")
}
