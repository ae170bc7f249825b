package kyc

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventflex/internal/models"
	"eventflex/internal/repositories"
	"eventflex/internal/repositories/mocks"
	"eventflex/internal/repositories/mongostore"
	"eventflex/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct{ titles []string }

func (f *fakeNotifier) Notify(_ context.Context, _ uint, _, title, _ string, _ models.JSON) {
	f.titles = append(f.titles, title)
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(_ context.Context, _ uint, action, _ string, _ uint, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

type testDeps struct {
	docs     *mocks.DocumentRepository
	kyc      *mocks.KYCRepository
	users    *mocks.UserRepository
	files    *mocks.FileStore
	notifier *fakeNotifier
	audit    *fakeAudit
}

const maxUpload = 5 << 20

func newTestService() (*service, *testDeps) {
	d := &testDeps{
		docs:     new(mocks.DocumentRepository),
		kyc:      new(mocks.KYCRepository),
		users:    new(mocks.UserRepository),
		files:    new(mocks.FileStore),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}
	svc := NewService(Dependencies{
		Documents: d.docs,
		KYC:       d.kyc,
		Users:     d.users,
		Tx:        mocks.Transactor{},
		Files:     d.files,
		Notifier:  d.notifier,
		Audit:     d.audit,
	}, maxUpload).(*service)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, d
}

func upload(docType, name string) Upload {
	return Upload{Type: docType, FileName: name, Size: 4, Content: strings.NewReader("data")}
}

func TestUploadDocument_New(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.kyc.On("GetByUserID", ctx, uint(7)).Return(nil, repositories.ErrNotFound)
	d.files.On("Save", ctx, "7/pan.pdf", "application/pdf", mock.Anything).Return("f1", nil)
	d.docs.On("GetByUserAndType", ctx, uint(7), models.DocumentPAN).Return(nil, repositories.ErrNotFound)
	d.docs.On("Create", ctx, mock.MatchedBy(func(doc *models.Document) bool {
		return doc.StoragePath == "f1" && doc.Version == 1 && doc.FileName == "pan.PDF"
	})).Return(nil)

	doc, err := svc.UploadDocument(ctx, 7, upload(models.DocumentPAN, "/tmp/pan.PDF"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MimeType)
	d.files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadDocument_ReplaceBumpsVersion(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	existing := &models.Document{UserID: 7, Type: models.DocumentSelfie, StoragePath: "old", Version: 2}
	d.kyc.On("GetByUserID", ctx, uint(7)).Return(&models.KYCVerification{Status: models.KYCRejected}, nil)
	d.files.On("Save", ctx, "7/selfie.png", "image/png", mock.Anything).Return("new", nil)
	d.docs.On("GetByUserAndType", ctx, uint(7), models.DocumentSelfie).Return(existing, nil)
	d.docs.On("Update", ctx, existing).Return(nil)
	d.files.On("Delete", ctx, "old").Return(nil)

	doc, err := svc.UploadDocument(ctx, 7, upload(models.DocumentSelfie, "me.png"))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, "new", doc.StoragePath)
	d.files.AssertExpectations(t)
}

func TestUploadDocument_RemovesFileOnDBFailure(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.kyc.On("GetByUserID", ctx, uint(7)).Return(nil, repositories.ErrNotFound)
	d.files.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("f1", nil)
	d.docs.On("GetByUserAndType", ctx, uint(7), models.DocumentPAN).Return(nil, repositories.ErrNotFound)
	d.docs.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
	d.files.On("Delete", ctx, "f1").Return(nil)

	_, err := svc.UploadDocument(ctx, 7, upload(models.DocumentPAN, "pan.jpg"))
	require.Error(t, err)
	d.files.AssertCalled(t, "Delete", ctx, "f1")
}

func TestUploadDocument_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		up      Upload
		status  string
		wantErr error
	}{
		{"unknown type", upload("passport", "p.pdf"), "", ErrInvalidDocumentType},
		{"bad extension", upload(models.DocumentPAN, "pan.exe"), "", ErrInvalidFileType},
		{"empty", Upload{Type: models.DocumentPAN, FileName: "pan.pdf"}, "", ErrEmptyFile},
		{"too large", Upload{Type: models.DocumentPAN, FileName: "pan.pdf", Size: maxUpload + 1}, "", ErrFileTooLarge},
		{"approved", upload(models.DocumentPAN, "pan.pdf"), models.KYCApproved, ErrKYCLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			if tt.status != "" {
				d.kyc.On("GetByUserID", mock.Anything, uint(7)).Return(&models.KYCVerification{Status: tt.status}, nil)
			}
			_, err := svc.UploadDocument(context.Background(), 7, tt.up)
			assert.ErrorIs(t, err, tt.wantErr)
			d.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOpenDocument(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	doc := &models.Document{UserID: 7, StoragePath: "f1"}
	d.docs.On("GetByID", ctx, uint(1)).Return(doc, nil)
	d.files.On("Open", ctx, "f1").Return([]byte("data"), nil)

	_, data, err := svc.OpenDocument(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	_, _, err = svc.OpenDocument(ctx, 0, 1)
	require.NoError(t, err, "admin can open any document")

	_, _, err = svc.OpenDocument(ctx, 8, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestOpenDocument_MissingFile(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.docs.On("GetByID", ctx, uint(1)).Return(&models.Document{UserID: 7, StoragePath: "gone"}, nil)
	d.files.On("Open", ctx, "gone").Return(nil, mongostore.ErrFileNotFound)

	_, _, err := svc.OpenDocument(ctx, 7, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func allDocs() []models.Document {
	docs := make([]models.Document, 0, len(models.RequiredKYCDocuments))
	for _, t := range models.RequiredKYCDocuments {
		docs = append(docs, models.Document{Type: t})
	}
	return docs
}

func TestStatus_ListsMissing(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	d.kyc.On("GetByUserID", ctx, uint(7)).Return(nil, repositories.ErrNotFound)
	d.docs.On("ListByUser", ctx, uint(7)).Return([]models.Document{{Type: models.DocumentPAN}}, nil)

	st, err := svc.Status(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.KYCNotSubmitted, st.Record.Status)
	assert.ElementsMatch(t, []string{models.DocumentAadhaar, models.DocumentSelfie, models.DocumentSignature}, st.Missing)
}

func TestSubmit(t *testing.T) {
	t.Run("first submission", func(t *testing.T) {
		svc, d := newTestService()
		ctx := context.Background()
		d.docs.On("ListByUser", ctx, uint(7)).Return(allDocs(), nil)
		d.kyc.On("GetByUserID", ctx, uint(7)).Return(nil, repositories.ErrNotFound)
		d.kyc.On("Create", ctx, mock.AnythingOfType("*models.KYCVerification")).Return(nil)
		d.users.On("SetKYCStatus", ctx, uint(7), models.KYCPending).Return(nil)

		rec, err := svc.Submit(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, models.KYCPending, rec.Status)
		assert.NotNil(t, rec.SubmittedAt)
	})

	t.Run("resubmission after rejection", func(t *testing.T) {
		svc, d := newTestService()
		ctx := context.Background()
		prev := &models.KYCVerification{UserID: 7, Status: models.KYCRejected, RejectReason: "blurry"}
		prev.ID = 3
		d.docs.On("ListByUser", ctx, uint(7)).Return(allDocs(), nil)
		d.kyc.On("GetByUserID", ctx, uint(7)).Return(prev, nil)
		d.kyc.On("Update", ctx, prev).Return(nil)
		d.users.On("SetKYCStatus", ctx, uint(7), models.KYCPending).Return(nil)

		rec, err := svc.Submit(ctx, 7)
		require.NoError(t, err)
		assert.Empty(t, rec.RejectReason)
	})

	t.Run("missing documents", func(t *testing.T) {
		svc, d := newTestService()
		d.docs.On("ListByUser", mock.Anything, uint(7)).Return(allDocs()[:2], nil)
		_, err := svc.Submit(context.Background(), 7)
		assert.ErrorIs(t, err, ErrDocumentsMissing)
	})

	t.Run("already pending", func(t *testing.T) {
		svc, d := newTestService()
		d.docs.On("ListByUser", mock.Anything, uint(7)).Return(allDocs(), nil)
		d.kyc.On("GetByUserID", mock.Anything, uint(7)).Return(&models.KYCVerification{Status: models.KYCPending}, nil)
		_, err := svc.Submit(context.Background(), 7)
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})
}

func pendingRecord() *models.KYCVerification {
	rec := &models.KYCVerification{UserID: 7, Status: models.KYCPending}
	rec.ID = 3
	return rec
}

func TestApprove(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	rec := pendingRecord()
	d.kyc.On("GetByIDForUpdate", ctx, uint(3)).Return(rec, nil)
	d.kyc.On("Update", ctx, rec).Return(nil)
	d.users.On("SetKYCStatus", ctx, uint(7), models.KYCApproved).Return(nil)

	got, err := svc.Approve(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, models.KYCApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, uint(1), *got.ReviewedBy)
	assert.Equal(t, []string{audit.ActionKYCApprove}, d.audit.actions)
	assert.Len(t, d.notifier.titles, 1)
}

func TestReject(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()

	_, err := svc.Reject(ctx, 1, 3, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rec := pendingRecord()
	d.kyc.On("GetByIDForUpdate", ctx, uint(3)).Return(rec, nil)
	d.kyc.On("Update", ctx, rec).Return(nil)
	d.users.On("SetKYCStatus", ctx, uint(7), models.KYCRejected).Return(nil)

	got, err := svc.Reject(ctx, 1, 3, "PAN unreadable")
	require.NoError(t, err)
	assert.Equal(t, "PAN unreadable", got.RejectReason)
	assert.Equal(t, []string{audit.ActionKYCReject}, d.audit.actions)
}

func TestApprove_NotPending(t *testing.T) {
	svc, d := newTestService()
	rec := pendingRecord()
	rec.Status = models.KYCApproved
	d.kyc.On("GetByIDForUpdate", mock.Anything, uint(3)).Return(rec, nil)

	_, err := svc.Approve(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrNotPending)
	d.kyc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, d.audit.actions)
}
