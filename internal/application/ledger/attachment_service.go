package ledger

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/agency/backoffice/internal/domain/ledger"
	"github.com/agency/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 15 * time.Minute
	maxFileNameLength = 120
)

var allowedReceiptTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// AttachmentService manages receipt files attached to transactions. Files
// go straight to object storage through presigned URLs; only the storage
// key is kept on the transaction.
type AttachmentService struct {
	repo    ledger.TransactionRepository
	storage ObjectStorage
	logger  *zap.Logger
}

// NewAttachmentService creates an AttachmentService
func NewAttachmentService(repo ledger.TransactionRepository, storage ObjectStorage, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, storage: storage, logger: logger}
}

// RequestUpload returns a presigned PUT URL and the key to confirm later
func (s *AttachmentService) RequestUpload(ctx context.Context, tenantID, transactionID uuid.UUID, fileName, contentType string) (*UploadURLResponse, error) {
	if !allowedReceiptTypes[strings.ToLower(contentType)] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", fmt.Sprintf("Receipts of type %q are not accepted", contentType))
	}
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if _, err := s.find(ctx, tenantID, transactionID); err != nil {
		return nil, err
	}

	key := ReceiptKey(tenantID, transactionID, uuid.New(), name)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, uploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to presign receipt upload", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &UploadURLResponse{UploadURL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

// ConfirmUpload attaches an uploaded receipt. The previous receipt, if
// any, is deleted from storage.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, tenantID, transactionID uuid.UUID, storageKey string) (*TransactionResponse, error) {
	if !strings.HasPrefix(storageKey, receiptPrefix(tenantID, transactionID)) {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "Storage key does not belong to this transaction")
	}
	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("ATTACHMENT_NOT_UPLOADED", "Receipt has not been uploaded")
	}

	tx, err := s.find(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	previous := tx.AttachmentKey
	if err := tx.AttachReceipt(storageKey); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, tx); err != nil {
		return nil, err
	}
	if previous != "" && previous != storageKey {
		s.deleteQuietly(ctx, previous)
	}

	r := ToTransactionResponse(tx)
	return &r, nil
}

// DownloadURL returns a presigned GET URL for the transaction's receipt
func (s *AttachmentService) DownloadURL(ctx context.Context, tenantID, transactionID uuid.UUID) (*DownloadURLResponse, error) {
	tx, err := s.find(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.AttachmentKey == "" {
		return nil, shared.NewDomainError("ATTACHMENT_NOT_FOUND", "Transaction has no receipt")
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, tx.AttachmentKey, downloadURLExpiry)
	if err != nil {
		return nil, err
	}
	return &DownloadURLResponse{DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// Remove detaches the receipt and deletes the file
func (s *AttachmentService) Remove(ctx context.Context, tenantID, transactionID uuid.UUID) error {
	tx, err := s.find(ctx, tenantID, transactionID)
	if err != nil {
		return err
	}
	if tx.AttachmentKey == "" {
		return shared.NewDomainError("ATTACHMENT_NOT_FOUND", "Transaction has no receipt")
	}
	key := tx.DetachReceipt()
	if err := s.repo.SaveWithLock(ctx, tx); err != nil {
		return err
	}
	s.deleteQuietly(ctx, key)
	return nil
}

var _ shared.EventHandler = (*AttachmentService)(nil)

// EventTypes subscribes the service to transaction deletions
func (s *AttachmentService) EventTypes() []string {
	return []string{ledger.EventTypeTransactionDeleted}
}

// Handle deletes the receipt of a transaction that no longer exists
func (s *AttachmentService) Handle(ctx context.Context, event shared.DomainEvent) error {
	deleted, ok := event.(*ledger.TransactionDeletedEvent)
	if !ok || deleted.AttachmentKey == "" {
		return nil
	}
	s.deleteQuietly(ctx, deleted.AttachmentKey)
	return nil
}

func (s *AttachmentService) deleteQuietly(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete receipt from storage", zap.String("key", key), zap.Error(err))
	}
}

func (s *AttachmentService) find(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	return findTransaction(ctx, s.repo, tenantID, id)
}

// ReceiptKey builds the object key for a receipt:
// tenants/<tenant>/transactions/<transaction>/<file id>-<name>
func ReceiptKey(tenantID, transactionID, fileID uuid.UUID, fileName string) string {
	return receiptPrefix(tenantID, transactionID) + fileID.String() + "-" + fileName
}

func receiptPrefix(tenantID, transactionID uuid.UUID) string {
	return path.Join("tenants", tenantID.String(), "transactions", transactionID.String()) + "/"
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_.")
	if len(name) > maxFileNameLength {
		name = name[len(name)-maxFileNameLength:]
	}
	return name
}
