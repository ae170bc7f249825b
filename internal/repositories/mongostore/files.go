package mongostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentBucket = "documents"

var ErrFileNotFound = errors.New("file not found")

// FileStore keeps uploaded KYC documents. IDs are opaque strings.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type gridFSStore struct {
	db *mongo.Database
}

func NewFileStore(db *mongo.Database) FileStore {
	return &gridFSStore{db: db}
}

// bucket is created per call so each operation gets its own deadline.
func (s *gridFSStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(documentBucket))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *gridFSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	id, err := b.UploadFromStream(name, r, opts)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return id.Hex(), nil
}

func (s *gridFSStore) Open(ctx context.Context, id string) ([]byte, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrFileNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := b.DownloadToStream(oid, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *gridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrFileNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
