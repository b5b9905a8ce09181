package attachment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic interface for attachments
type Service interface {
	Create(ctx context.Context, req CreateAttachmentRequest, uploaderID uuid.UUID) (*Attachment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]Attachment, error)
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new attachment service instance
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateAttachmentRequest, uploaderID uuid.UUID) (*Attachment, error) {
	attachment := &Attachment{
		FileName:   req.FileName,
		FilePath:   req.FilePath,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		UploaderID: uploaderID,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		return nil, err
	}
	s.logger.Info("attachment created",
		zap.String("attachment_id", attachment.ID.String()),
		zap.String("file_name", attachment.FileName))
	return attachment, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]Attachment, error) {
	return s.repo.ListByUploader(ctx, uploaderID)
}

// ExistAll reports whether every id resolves to a stored attachment.
func (s *service) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	return len(found) == len(seen), nil
}
