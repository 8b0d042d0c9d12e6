package media

import (
	"context"

	"github.com/ordoo/ordoo_backend/internal/apperr"
)

// Media identifies a stored object.
type Media struct {
	Key string
	URL string
}

// Service handles single and chunked media uploads.
type Service struct {
	storage ObjectStorage
	chunks  *ChunkStore
}

// NewService builds the upload service. The chunk store may be nil, which
// disables chunked uploads.
func NewService(storage ObjectStorage, chunks *ChunkStore) *Service {
	return &Service{storage: storage, chunks: chunks}
}

// UploadSingle stores a complete file.
func (s *Service) UploadSingle(ctx context.Context, contentType string, data []byte) (Media, error) {
	if len(data) == 0 {
		return Media{}, apperr.New(apperr.Validation, "No file provided")
	}
	key := StorageKey()
	url, err := s.storage.Put(ctx, key, contentType, data)
	if err != nil {
		return Media{}, apperr.Wrap(apperr.Unexpected, "Upload failed", err)
	}
	return Media{Key: key, URL: url}, nil
}

// ChunkInput carries one part of a chunked upload.
type ChunkInput struct {
	UploadID    string
	ContentType string
	Index       int
	Total       int
	Data        []byte
}

// UploadChunk buffers one chunk. When the final chunk arrives the parts are
// assembled in index order and stored; the returned Media is nil while the
// upload is still pending. Progress is received/total in either case.
func (s *Service) UploadChunk(ctx context.Context, in ChunkInput) (*Media, float64, error) {
	if s.chunks == nil {
		return nil, 0, apperr.New(apperr.Unexpected, "Chunked uploads are not available")
	}
	if len(in.Data) == 0 {
		return nil, 0, apperr.New(apperr.Validation, "No chunk provided")
	}
	if in.UploadID == "" || in.Total <= 0 || in.Index < 0 || in.Index >= in.Total {
		return nil, 0, apperr.New(apperr.Validation, "Invalid chunk metadata")
	}

	received, err := s.chunks.Save(ctx, in.UploadID, in.Index, in.Data)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Unexpected, "Chunk upload failed", err)
	}
	progress := float64(received) / float64(in.Total)
	if received < in.Total {
		return nil, progress, nil
	}

	data, err := s.chunks.Assemble(ctx, in.UploadID, in.Total)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Unexpected, "Chunk upload failed", err)
	}
	key := StorageKey()
	url, err := s.storage.Put(ctx, key, in.ContentType, data)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Unexpected, "Upload failed", err)
	}
	return &Media{Key: key, URL: url}, 1, nil
}
