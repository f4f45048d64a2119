package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"stockflow/internal/apperror"
	"stockflow/internal/export"
	"stockflow/internal/repository"
	"stockflow/internal/storage"
)

// ExportFile is a rendered CSV attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ArchiveResult points at an uploaded export.
type ArchiveResult struct {
	Key       string    `json:"key"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ExportService interface {
	Orders(ctx context.Context, userID string) (*ExportFile, error)
	Inventory(ctx context.Context, userID string) (*ExportFile, error)
	// Archive uploads f under the tenant's export prefix and presigns a download URL.
	Archive(ctx context.Context, userID string, f *ExportFile) (*ArchiveResult, error)
}

type exportService struct {
	orders repository.OrderRepository
	skus   repository.SKURepository
	store  storage.Storage
	expiry time.Duration
	now    func() time.Time
}

// NewExportService builds the export use cases. store may be nil, in which
// case Archive reports a dependency error.
func NewExportService(orders repository.OrderRepository, skus repository.SKURepository, store storage.Storage, presignExpiry time.Duration) ExportService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &exportService{orders: orders, skus: skus, store: store, expiry: presignExpiry, now: time.Now}
}

func (s *exportService) Orders(ctx context.Context, userID string) (*ExportFile, error) {
	res, err := s.orders.List(ctx, userID, repository.PageQuery{})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, export.OrderColumns, res.Items); err != nil {
		return nil, fmt.Errorf("render orders csv: %w", err)
	}
	return s.file(export.ViewOrders, buf.Bytes()), nil
}

func (s *exportService) Inventory(ctx context.Context, userID string) (*ExportFile, error) {
	skus, err := s.skus.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, export.InventoryColumns, skus); err != nil {
		return nil, fmt.Errorf("render inventory csv: %w", err)
	}
	return s.file(export.ViewInventory, buf.Bytes()), nil
}

func (s *exportService) file(view string, data []byte) *ExportFile {
	return &ExportFile{
		Name:        export.FileName(view, s.now().UTC()),
		ContentType: export.ContentType,
		Data:        data,
	}
}

func (s *exportService) Archive(ctx context.Context, userID string, f *ExportFile) (*ArchiveResult, error) {
	if s.store == nil {
		return nil, apperror.Wrap(apperror.CodeDependency, storage.ErrDisabled, "export archiving is not available")
	}
	key := storage.ExportKey(userID, f.Name)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(f.Data), storage.PutObjectOptions{
		Size:        int64(len(f.Data)),
		ContentType: f.ContentType,
		Metadata:    map[string]string{"tenant": userID},
	}); err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "upload export")
	}
	url, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "presign export")
	}
	return &ArchiveResult{
		Key:       key,
		FileName:  f.Name,
		URL:       url,
		ExpiresAt: s.now().UTC().Add(s.expiry),
	}, nil
}
