// Package kyc handles identity documents and the review workflow that gates
// withdrawals.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"eventflex/internal/apperr"
	"eventflex/internal/logger"
	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mongostore"
	"eventflex/internal/services/audit"
	"eventflex/internal/services/notification"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

var (
	ErrInvalidDocumentType = apperr.BadRequest("type must be one of: aadhaar, pan, selfie, signature")
	ErrFileTooLarge        = apperr.BadRequest("file size exceeds the upload limit")
	ErrEmptyFile           = apperr.BadRequest("file is empty")
	ErrInvalidFileType     = apperr.BadRequest("file must be a .jpg, .jpeg, .png or .pdf")
	ErrKYCLocked           = apperr.Unprocessable("documents cannot be changed after KYC approval")
	ErrDocumentNotFound    = apperr.NotFound("document not found")
	ErrDocumentsMissing    = apperr.Unprocessable("upload all required documents before submitting")
	ErrAlreadySubmitted    = apperr.Conflict("KYC is already pending review or approved")
	ErrKYCNotFound         = apperr.NotFound("KYC record not found")
	ErrNotPending          = apperr.Unprocessable("only pending KYC submissions can be reviewed")
	ErrReasonRequired      = apperr.BadRequest("a rejection reason is required")
)

// Upload describes one multipart file.
type Upload struct {
	Type     string
	FileName string
	Size     int64
	Content  io.Reader
}

// Status is a user's KYC record with the documents on file.
type Status struct {
	Record    *models.KYCVerification `json:"kyc"`
	Documents []models.Document       `json:"documents"`
	Missing   []string                `json:"missing"`
}

type Service interface {
	UploadDocument(ctx context.Context, userID uint, up Upload) (*models.Document, error)
	ListDocuments(ctx context.Context, userID uint) ([]models.Document, error)
	// OpenDocument returns a document's bytes. ownerID 0 grants admin access.
	OpenDocument(ctx context.Context, ownerID, documentID uint) (*models.Document, []byte, error)
	Status(ctx context.Context, userID uint) (*Status, error)
	Submit(ctx context.Context, userID uint) (*models.KYCVerification, error)

	// Admin review
	List(ctx context.Context, status string, limit, offset int) ([]models.KYCVerification, int64, error)
	Approve(ctx context.Context, adminID, id uint) (*models.KYCVerification, error)
	Reject(ctx context.Context, adminID, id uint, reason string) (*models.KYCVerification, error)
}

type service struct {
	docs     repositories.DocumentRepository
	kyc      repositories.KYCRepository
	users    repositories.UserRepository
	tx       repositories.Transactor
	files    mongostore.FileStore
	notifier notification.Notifier
	audit    audit.Recorder
	maxSize  int64
	now      func() time.Time
}

type Dependencies struct {
	Documents repositories.DocumentRepository
	KYC       repositories.KYCRepository
	Users     repositories.UserRepository
	Tx        repositories.Transactor
	Files     mongostore.FileStore
	Notifier  notification.Notifier
	Audit     audit.Recorder
}

func NewService(deps Dependencies, maxSize int64) Service {
	if deps.Audit == nil {
		deps.Audit = audit.Noop{}
	}
	return &service{
		docs:     deps.Documents,
		kyc:      deps.KYC,
		users:    deps.Users,
		tx:       deps.Tx,
		files:    deps.Files,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

func (s *service) UploadDocument(ctx context.Context, userID uint, up Upload) (*models.Document, error) {
	if !models.IsValidDocumentType(up.Type) {
		return nil, ErrInvalidDocumentType
	}
	if up.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if up.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(up.FileName))
	mimeType, ok := allowedExtensions[ext]
	if !ok {
		return nil, ErrInvalidFileType
	}

	record, err := s.record(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.KYCApproved {
		return nil, ErrKYCLocked
	}

	storedName := fmt.Sprintf("%d/%s%s", userID, up.Type, ext)
	fileID, err := s.files.Save(ctx, storedName, mimeType, io.LimitReader(up.Content, s.maxSize))
	if err != nil {
		return nil, err
	}

	var replaced string
	doc, err := s.docs.GetByUserAndType(ctx, userID, up.Type)
	switch {
	case err == nil:
		replaced = doc.StoragePath
		doc.FileName = filepath.Base(up.FileName)
		doc.StoragePath = fileID
		doc.MimeType = mimeType
		doc.Size = up.Size
		doc.Version++
		err = s.docs.Update(ctx, doc)
	case errors.Is(err, repositories.ErrNotFound):
		doc = &models.Document{
			UserID:      userID,
			Type:        up.Type,
			FileName:    filepath.Base(up.FileName),
			StoragePath: fileID,
			MimeType:    mimeType,
			Size:        up.Size,
			Version:     1,
		}
		err = s.docs.Create(ctx, doc)
	}
	if err != nil {
		s.removeFile(ctx, fileID)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	if replaced != "" {
		s.removeFile(ctx, replaced)
	}
	return doc, nil
}

func (s *service) removeFile(ctx context.Context, id string) {
	if err := s.files.Delete(ctx, id); err != nil && !errors.Is(err, mongostore.ErrFileNotFound) {
		logger.Log.WithError(err).WithField("file_id", id).Warn("failed to delete stored document")
	}
}

func (s *service) ListDocuments(ctx context.Context, userID uint) ([]models.Document, error) {
	return s.docs.ListByUser(ctx, userID)
}

func (s *service) OpenDocument(ctx context.Context, ownerID, documentID uint) (*models.Document, []byte, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	if ownerID != 0 && doc.UserID != ownerID {
		return nil, nil, ErrDocumentNotFound
	}
	data, err := s.files.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, mongostore.ErrFileNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	return doc, data, nil
}

// record returns the user's KYC record, or an unsaved not_submitted one.
func (s *service) record(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	rec, err := s.kyc.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.KYCVerification{UserID: userID, Status: models.KYCNotSubmitted}, nil
	}
	return rec, err
}

func (s *service) Status(ctx context.Context, userID uint) (*Status, error) {
	rec, err := s.record(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Status{Record: rec, Documents: docs, Missing: missing(docs)}, nil
}

func missing(docs []models.Document) []string {
	have := make(map[string]bool, len(docs))
	for _, d := range docs {
		have[d.Type] = true
	}
	out := []string{}
	for _, t := range models.RequiredKYCDocuments {
		if !have[t] {
			out = append(out, t)
		}
	}
	return out
}

func (s *service) Submit(ctx context.Context, userID uint) (*models.KYCVerification, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(missing(docs)) > 0 {
		return nil, ErrDocumentsMissing
	}

	rec, err := s.record(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !rec.CanSubmit() {
		return nil, ErrAlreadySubmitted
	}

	now := s.now()
	rec.Status = models.KYCPending
	rec.SubmittedAt = &now
	rec.RejectReason = ""
	rec.ReviewedAt = nil
	rec.ReviewedBy = nil

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if rec.ID == 0 {
			if err := s.kyc.WithTx(tx).Create(ctx, rec); err != nil {
				return err
			}
		} else if err := s.kyc.WithTx(tx).Update(ctx, rec); err != nil {
			return err
		}
		return s.users.WithTx(tx).SetKYCStatus(ctx, userID, models.KYCPending)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit KYC: %w", err)
	}
	return rec, nil
}

func (s *service) List(ctx context.Context, status string, limit, offset int) ([]models.KYCVerification, int64, error) {
	return s.kyc.List(ctx, status, limit, offset)
}

func (s *service) Approve(ctx context.Context, adminID, id uint) (*models.KYCVerification, error) {
	rec, err := s.decide(ctx, adminID, id, models.KYCApproved, "")
	if err != nil {
		return nil, err
	}
	s.notify(ctx, rec.UserID, "KYC approved", "Your identity has been verified. You can now withdraw funds.")
	s.audit.Record(ctx, adminID, audit.ActionKYCApprove, "kyc", rec.ID, map[string]interface{}{"user_id": rec.UserID})
	return rec, nil
}

func (s *service) Reject(ctx context.Context, adminID, id uint, reason string) (*models.KYCVerification, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	rec, err := s.decide(ctx, adminID, id, models.KYCRejected, reason)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, rec.UserID, "KYC rejected", "Your KYC was rejected: "+reason)
	s.audit.Record(ctx, adminID, audit.ActionKYCReject, "kyc", rec.ID, map[string]interface{}{
		"user_id": rec.UserID,
		"reason":  reason,
	})
	return rec, nil
}

func (s *service) decide(ctx context.Context, adminID, id uint, status, reason string) (*models.KYCVerification, error) {
	var rec *models.KYCVerification
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		r, err := s.kyc.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrKYCNotFound
			}
			return err
		}
		if r.Status != models.KYCPending {
			return ErrNotPending
		}

		now := s.now()
		r.Status = status
		r.RejectReason = reason
		r.ReviewedAt = &now
		r.ReviewedBy = &adminID
		if err := s.kyc.WithTx(tx).Update(ctx, r); err != nil {
			return err
		}
		rec = r
		return s.users.WithTx(tx).SetKYCStatus(ctx, r.UserID, status)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"kyc_id":   rec.ID,
		"user_id":  rec.UserID,
		"status":   status,
		"admin_id": adminID,
	}).Info("kyc reviewed")
	return rec, nil
}

func (s *service) notify(ctx context.Context, userID uint, title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, models.NotifyKYC, title, body, nil)
	}
}
