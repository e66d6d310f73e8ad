package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report validation failures with the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// RespondError maps service errors onto HTTP status codes.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError reports malformed bodies and per-field validation failures.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s: failed '%s' validation", fe.Field(), fe.Tag()))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// pathID parses a numeric path parameter, answering 400 when it is invalid.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUpload opens the first file found under one of the given form fields.
// It returns a nil upload for non-multipart requests or when no file was sent.
// The returned close func is always safe to call.
func formUpload(c *gin.Context, fields ...string) (*services.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}

	var header *multipart.FileHeader
	for _, field := range fields {
		h, err := c.FormFile(field)
		if err == nil {
			header = h
			break
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, noop, fmt.Errorf("%w: unreadable upload", services.ErrBadRequest)
		}
	}
	if header == nil || header.Size == 0 {
		return nil, noop, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("open upload: %w", err)
	}
	return &services.Upload{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}
