package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/engagement-backend/internal/config"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

// headerSize достаточно filetype для распознавания всех поддерживаемых форматов.
const headerSize = 261

// Provider принимает содержимое результата и удаляет его по content_id.
type Provider interface {
	Upload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (*models.UploadedContent, error)
	Delete(ctx context.Context, contentID string) error
}

// New возвращает файловое хранилище или заглушку, если загрузки отключены.
func New(cfg config.UploadConfig) (Provider, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	return NewDiskStorage(cfg.StoragePath, cfg.PublicBaseURL, cfg.MaxUploadMB)
}

// DiskStorage хранит файлы результатов на локальном диске.
type DiskStorage struct {
	rootPath       string
	publicBaseURL  string
	maxUploadBytes int64
}

// NewDiskStorage создаёт файловое хранилище.
func NewDiskStorage(rootPath, publicBaseURL string, maxUploadMB int64) (*DiskStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DiskStorage{
		rootPath:       rootPath,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Upload сохраняет файл и возвращает ссылку, идентификатор, размер и тип содержимого.
func (s *DiskStorage) Upload(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (*models.UploadedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "не удалось прочитать файл")
	}
	header = header[:n]
	if n == 0 {
		return nil, apperror.Validation("файл пуст")
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], filepath.Ext(safeName))

	ownerDir := filepath.Join(s.rootPath, ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "не удалось создать каталог")
	}

	targetPath := filepath.Join(ownerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "не удалось создать файл")
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(header), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "ошибка записи файла")
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return nil, apperror.Validation(fmt.Sprintf("размер файла превышает лимит %d байт", s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "ошибка закрытия файла")
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstreamUnavailable, "не удалось переименовать файл")
	}

	contentID := path.Join(ownerID.String(), fileName)
	size := written

	return &models.UploadedContent{
		URL:       s.publicBaseURL + "/" + contentID,
		ContentID: contentID,
		ByteSize:  &size,
		MediaKind: detectMediaKind(header),
	}, nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл не считается ошибкой.
func (s *DiskStorage) Delete(ctx context.Context, contentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := path.Clean("/" + contentID)
	target := filepath.Join(s.rootPath, filepath.FromSlash(clean))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// detectMediaKind возвращает группу типа: image, video, audio, archive, document или other.
func detectMediaKind(header []byte) string {
	switch {
	case filetype.IsImage(header):
		return "image"
	case filetype.IsVideo(header):
		return "video"
	case filetype.IsAudio(header):
		return "audio"
	case filetype.IsArchive(header):
		return "archive"
	case filetype.IsDocument(header):
		return "document"
	}

	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown {
		return "other"
	}
	return kind.MIME.Type
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "deliverable"
	}
	return name
}

// Disabled используется, когда хранилище не настроено.
type Disabled struct{}

// Upload всегда отклоняет загрузку.
func (Disabled) Upload(context.Context, uuid.UUID, string, io.Reader) (*models.UploadedContent, error) {
	return nil, apperror.ErrUploadUnavailable
}

// Delete ничего не делает.
func (Disabled) Delete(context.Context, string) error {
	return nil
}
