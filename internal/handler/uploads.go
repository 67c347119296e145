package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/adapter/storage/s3"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/usecase"
)

// maxFormMemory caps how much of a multipart body is buffered in memory.
const maxFormMemory = 32 << 20

// readUploads pulls the uploaded files for a form field into memory,
// rejecting unsupported formats and oversized files before reading the data.
func readUploads(r *http.Request, field string) ([]usecase.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]usecase.Upload, 0, len(headers))
	for _, fh := range headers {
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}
		if err := s3.ValidateUpload(contentType, int(fh.Size)); err != nil {
			return nil, err
		}

		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, usecase.Upload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return uploads, nil
}

// readSingleUpload returns the first uploaded file for the field, or nil when
// the field is empty.
func readSingleUpload(r *http.Request, field string) (*usecase.Upload, error) {
	uploads, err := readUploads(r, field)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, nil
	}
	return &uploads[0], nil
}
