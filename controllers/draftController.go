package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Kariqs/amexan-portal/services"
	"github.com/Kariqs/amexan-portal/submission"
	"github.com/Kariqs/amexan-portal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DraftController exposes the product form sessions.
type DraftController struct {
	registry *submission.Registry
	maxSize  int64
	logger   *zap.Logger
}

func NewDraftController(registry *submission.Registry, maxSize int64, logger *zap.Logger) *DraftController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftController{registry: registry, maxSize: maxSize, logger: logger.Named("drafts")}
}

type draftResponse struct {
	Draft      submission.Snapshot   `json:"draft"`
	Categories []submission.Category `json:"categories,omitempty"`
	Notices    []submission.Notice   `json:"notices"`
}

func render(ctx *gin.Context, status int, d *submission.Draft, withCategories bool) {
	resp := draftResponse{Draft: d.Snapshot(), Notices: d.Notices()}
	if resp.Notices == nil {
		resp.Notices = []submission.Notice{}
	}
	if withCategories {
		resp.Categories = d.Categories()
	}
	ctx.JSON(status, resp)
}

func (c *DraftController) draft(ctx *gin.Context) (*submission.Draft, bool) {
	d, err := c.registry.Get(ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, http.StatusNotFound, "Draft not found", nil)
		return nil, false
	}
	return d, true
}

func (c *DraftController) OpenDraft(ctx *gin.Context) {
	d, err := c.registry.Open(ctx.Request.Context())
	if err != nil {
		c.logger.Error("Failed to open draft", zap.Error(err))
		respondWithError(ctx, http.StatusInternalServerError, "Failed to open draft", err)
		return
	}
	render(ctx, http.StatusCreated, d, true)
}

func (c *DraftController) EditProduct(ctx *gin.Context) {
	d, err := c.registry.Hydrate(ctx.Request.Context(), ctx.Param("productId"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}
		c.logger.Error("Failed to open product for editing", zap.String("product_id", ctx.Param("productId")), zap.Error(err))
		respondWithError(ctx, http.StatusBadGateway, "Failed to load product", err)
		return
	}
	render(ctx, http.StatusCreated, d, true)
}

func (c *DraftController) GetDraft(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}
	render(ctx, http.StatusOK, d, ctx.Query("categories") == "true")
}

func (c *DraftController) UpdateFields(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}

	var patch submission.FieldsPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := d.SetFields(patch); err != nil {
		respondWithDraftError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, d, false)
}

type categorySelection struct {
	CategoryID string `json:"categoryId"`
}

func (c *DraftController) SelectCategory(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}

	var req categorySelection
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := d.SelectCategory(req.CategoryID); err != nil {
		respondWithDraftError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, d, false)
}

type subcategorySelection struct {
	SubcategoryID string `json:"subcategoryId"`
}

func (c *DraftController) SelectSubcategory(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}

	var req subcategorySelection
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := d.SelectSubcategory(req.SubcategoryID); err != nil {
		respondWithDraftError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, d, false)
}

// AddImages admits the selected files. Uploads continue in the background;
// clients poll GetDraft for statuses.
func (c *DraftController) AddImages(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		respondWithError(ctx, http.StatusBadRequest, "No files uploaded", nil)
		return
	}

	files, err := utils.ReadImages(headers, c.maxSize)
	if err != nil {
		respondWithFileError(ctx, err)
		return
	}
	if _, err := d.Admit(files); err != nil {
		respondWithDraftError(ctx, err)
		return
	}
	render(ctx, http.StatusAccepted, d, false)
}

func (c *DraftController) RemoveImage(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}
	if err := d.Remove(ctx.Param("localId")); err != nil {
		respondWithDraftError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, d, false)
}

func (c *DraftController) GetPreview(ctx *gin.Context) {
	d, ok := c.draft(ctx)
	if !ok {
		return
	}

	rc, err := d.Previews().Open(ctx.Param("handle"))
	if err != nil {
		respondWithError(ctx, http.StatusNotFound, "Preview not found", nil)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to read preview", err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

func (c *DraftController) SubmitDraft(ctx *gin.Context) {
	id := ctx.Param("id")
	product, err := c.registry.Submit(ctx.Request.Context(), id)
	if err != nil {
		var invalid *submission.ValidationError
		var rejected *submission.SubmissionError
		switch {
		case errors.Is(err, submission.ErrDraftNotFound), errors.Is(err, submission.ErrDraftClosed):
			respondWithError(ctx, http.StatusNotFound, "Draft not found", nil)
		case errors.Is(err, submission.ErrSubmitInProgress), errors.Is(err, submission.ErrAlreadySubmitted):
			respondWithError(ctx, http.StatusConflict, "Draft is already being submitted", err)
		case errors.Is(err, submission.ErrUploadsInProgress):
			respondWithError(ctx, http.StatusConflict, "Please wait for images to finish uploading", err)
		case errors.As(err, &invalid):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{
				"message": "Please fix the highlighted fields",
				"errors":  invalid.Fields,
			})
		case errors.As(err, &rejected):
			c.logger.Warn("Product service rejected submission", zap.String("draft_id", id), zap.Error(err))
			respondWithError(ctx, http.StatusBadGateway, "Failed to save product", rejected.Err)
		default:
			respondWithError(ctx, http.StatusInternalServerError, "Failed to submit draft", err)
		}
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Product saved", "product": product})
}

func (c *DraftController) DiscardDraft(ctx *gin.Context) {
	if err := c.registry.Discard(ctx.Param("id")); err != nil {
		respondWithError(ctx, http.StatusNotFound, "Draft not found", nil)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

func respondWithDraftError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, submission.ErrTooManyImages):
		respondWithError(ctx, http.StatusBadRequest, "Too many images", err)
	case errors.Is(err, submission.ErrItemNotFound):
		respondWithError(ctx, http.StatusNotFound, "Image not found", nil)
	case errors.Is(err, submission.ErrDraftClosed):
		respondWithError(ctx, http.StatusNotFound, "Draft not found", nil)
	case errors.Is(err, submission.ErrUnknownCategory), errors.Is(err, submission.ErrUnknownSubcategory):
		respondWithError(ctx, http.StatusBadRequest, "Invalid category selection", err)
	default:
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update draft", err)
	}
}
