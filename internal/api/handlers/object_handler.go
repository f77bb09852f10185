// internal/api/handlers/object_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/transcribe-helpers/internal/service"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
)

type ObjectHandler struct {
	objectService *service.ObjectService
}

func NewObjectHandler(objectService *service.ObjectService) *ObjectHandler {
	return &ObjectHandler{objectService: objectService}
}

// Upload stores the multipart "file" field in the bucket and returns its public URL
func (h *ObjectHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	result, err := h.objectService.UploadFile(c.Request.Context(), file, c.PostForm("bucket"), c.PostForm("key"))
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to upload file")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns the first page of objects in a bucket
func (h *ObjectHandler) List(c *gin.Context) {
	objects, err := h.objectService.ListObjects(c.Request.Context(), c.Param("bucket"))
	if err != nil {
		log.Error().Err(err).Str("bucket", c.Param("bucket")).Msg("failed to list objects")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, objects)
}

// URL returns the public URL of an object without contacting the store
func (h *ObjectHandler) URL(c *gin.Context) {
	url, err := h.objectService.ObjectURL(c.Param("bucket"), c.Param("key"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Delete removes an object; unknown keys still succeed
func (h *ObjectHandler) Delete(c *gin.Context) {
	if err := h.objectService.DeleteObject(c.Request.Context(), c.Param("bucket"), c.Param("key")); err != nil {
		log.Error().Err(err).Str("bucket", c.Param("bucket")).Str("key", c.Param("key")).Msg("failed to delete object")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// PurgeWorkdir empties the local working directory
func (h *ObjectHandler) PurgeWorkdir(c *gin.Context) {
	removed, err := h.objectService.PurgeWorkdir()
	if err != nil {
		log.Error().Err(err).Msg("failed to purge working directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "removed": removed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBucketRequired), errors.Is(err, service.ErrKeyRequired),
		errors.Is(err, storage.ErrLocalFileNotFound), errors.Is(err, storage.ErrNotRegularFile):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
