package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/storage"
)

// formUpload opens the multipart file sent under field. It returns a nil
// upload when the field is absent. The caller must run the returned close
// function once the upload has been consumed.
func formUpload(c *gin.Context, field string) (*storage.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, func() {}, errFileTooLarge
		}
		return nil, func() {}, errInvalidBody
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*storage.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, errInvalidBody
	}
	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

// limitBody caps request bodies at maxBytes. Zero disables the limit.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
