package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-portal/submission"
	"github.com/Kariqs/amexan-portal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadController stores single images for clients that upload directly.
type UploadController struct {
	store   submission.ObjectStore
	maxSize int64
	logger  *zap.Logger
}

func NewUploadController(store submission.ObjectStore, maxSize int64, logger *zap.Logger) *UploadController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadController{store: store, maxSize: maxSize, logger: logger.Named("upload")}
}

func (c *UploadController) UploadImage(ctx *gin.Context) {
	header, err := ctx.FormFile("image")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}

	file, err := utils.ReadImage(header, c.maxSize)
	if err != nil {
		respondWithFileError(ctx, err)
		return
	}

	result, err := c.store.Upload(ctx.Request.Context(), file)
	if err != nil {
		c.logger.Warn("Error uploading file", zap.String("file", file.Name), zap.Error(err))
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload file", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"location": result.Location})
}

func respondWithFileError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrFileTooLarge):
		respondWithError(ctx, http.StatusRequestEntityTooLarge, "File is too large", err)
	case errors.Is(err, utils.ErrNotAnImage), errors.Is(err, utils.ErrEmptyFile):
		respondWithError(ctx, http.StatusBadRequest, "Only image files can be uploaded", err)
	default:
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
	}
}
