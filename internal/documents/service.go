package documents

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

const maxDocumentBytes = 50 << 20

type repository interface {
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, orgID uuid.UUID, query ListDocumentsQuery) ([]models.Document, *pagination.Cursor, error)
	Update(ctx context.Context, document *models.Document) error
}

// ObjectStore is the slice of the GCS client the document service needs.
type ObjectStore interface {
	DefaultBucket() string
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service manages document metadata and presigned access to the backing
// bucket. Uploads are two-phase: a pending row plus PUT URL first, then a
// confirm call once the client has uploaded the bytes.
type Service struct {
	repo  repository
	store ObjectStore
	cfg   config.GCSConfig
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the document service.
func NewService(repo repository, store ObjectStore, cfg config.GCSConfig, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "document repository required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "object store required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, store: store, cfg: cfg, audit: auditor, now: time.Now}, nil
}

// RequestUpload reserves a pending metadata row and returns a presigned PUT
// URL for the client to upload against.
func (s *Service) RequestUpload(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateUploadDTO) (UploadSlotDTO, error) {
	if orgID == uuid.Nil {
		return UploadSlotDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return UploadSlotDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(dto.ContentType) == "" {
		return UploadSlotDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}
	if dto.SizeBytes < 0 || dto.SizeBytes > maxDocumentBytes {
		return UploadSlotDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "document size out of range")
	}

	kind := enums.DocumentKindOther
	if strings.TrimSpace(dto.Kind) != "" {
		parsed, err := enums.ParseDocumentKind(dto.Kind)
		if err != nil {
			return UploadSlotDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
		}
		kind = parsed
	}

	bucket := s.store.DefaultBucket()
	document := &models.Document{
		OrgID:        orgID,
		Name:         name,
		Kind:         kind,
		Status:       enums.DocumentStatusPending,
		Bucket:       bucket,
		ObjectKey:    buildObjectKey(orgID, name),
		ContentType:  strings.TrimSpace(dto.ContentType),
		SizeBytes:    dto.SizeBytes,
		UploadedByID: actorID,
	}
	if err := s.repo.Create(ctx, document); err != nil {
		return UploadSlotDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}

	uploadURL, err := s.store.SignedURL(bucket, document.ObjectKey, document.ContentType, s.cfg.UploadURLExpiry)
	if err != nil {
		return UploadSlotDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "document.upload_requested",
		Resource:   "document",
		ResourceID: document.ID.String(),
		Metadata:   map[string]string{"kind": string(kind)},
	})
	return UploadSlotDTO{Document: ToDTO(document), UploadURL: uploadURL}, nil
}

// ConfirmUpload marks a pending document as uploaded.
func (s *Service) ConfirmUpload(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) (DocumentDTO, error) {
	document, err := s.load(ctx, orgID, id)
	if err != nil {
		return DocumentDTO{}, err
	}
	if document.Status != enums.DocumentStatusPending {
		return DocumentDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "document is not awaiting confirmation")
	}

	confirmedAt := s.now().UTC()
	document.Status = enums.DocumentStatusConfirmed
	document.ConfirmedAt = &confirmedAt
	if err := s.repo.Update(ctx, document); err != nil {
		return DocumentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm document")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "document.confirmed",
		Resource:   "document",
		ResourceID: document.ID.String(),
	})
	return ToDTO(document), nil
}

// Download returns a presigned GET URL for a confirmed document.
func (s *Service) Download(ctx context.Context, orgID, id uuid.UUID) (DownloadDTO, error) {
	document, err := s.load(ctx, orgID, id)
	if err != nil {
		return DownloadDTO{}, err
	}
	if document.Status != enums.DocumentStatusConfirmed {
		return DownloadDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "document is not available for download")
	}

	url, err := s.store.SignedReadURL(document.Bucket, document.ObjectKey, s.cfg.DownloadURLExpiry)
	if err != nil {
		return DownloadDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return DownloadDTO{
		DownloadURL: url,
		ExpiresAt:   s.now().UTC().Add(s.cfg.DownloadURLExpiry),
	}, nil
}

// Get loads one document's metadata.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (DocumentDTO, error) {
	document, err := s.load(ctx, orgID, id)
	if err != nil {
		return DocumentDTO{}, err
	}
	return ToDTO(document), nil
}

// List returns one page of the org's documents.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListDocumentsQuery) (DocumentPageDTO, error) {
	if orgID == uuid.Nil {
		return DocumentPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return DocumentPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}

	page := DocumentPageDTO{Items: make([]DocumentDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Delete removes the object from the bucket and marks the row deleted. The
// metadata row is kept so the audit trail stays intact.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) error {
	document, err := s.load(ctx, orgID, id)
	if err != nil {
		return err
	}
	if document.Status == enums.DocumentStatusDeleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "document is already deleted")
	}

	if document.Status == enums.DocumentStatusConfirmed {
		if err := s.store.DeleteObject(ctx, document.Bucket, document.ObjectKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
		}
	}

	document.Status = enums.DocumentStatusDeleted
	if err := s.repo.Update(ctx, document); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "document.deleted",
		Resource:   "document",
		ResourceID: document.ID.String(),
	})
	return nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.Document, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and document id are required")
	}
	document, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document")
	}
	return document, nil
}

// buildObjectKey namespaces objects by org and a fresh id so client file
// names can never collide or traverse.
func buildObjectKey(orgID uuid.UUID, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	return fmt.Sprintf("orgs/%s/documents/%s/%s", orgID, uuid.NewString(), sanitized)
}
