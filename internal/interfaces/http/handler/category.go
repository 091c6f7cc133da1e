package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/t1tandr/uevent/internal/application/catalog"
)

// CategoryHandler serves event categories and filter values
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// List godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Get godoc
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Filters godoc
// @Summary      Event filters
// @Description  Formats and themes with display labels
// @Tags         filters
// @Produce      json
// @Success      200 {object} dto.Response{data=catalogapp.FiltersResponse}
// @Router       /filters [get]
func (h *CategoryHandler) Filters(c *gin.Context) {
	h.Success(c, h.categoryService.Filters())
}

// Formats godoc
// @Summary      Event formats
// @Tags         filters
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.FilterOption}
// @Router       /filters/formats [get]
func (h *CategoryHandler) Formats(c *gin.Context) {
	h.Success(c, h.categoryService.Formats())
}

// Themes godoc
// @Summary      Event themes
// @Tags         filters
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.FilterOption}
// @Router       /filters/themes [get]
func (h *CategoryHandler) Themes(c *gin.Context) {
	h.Success(c, h.categoryService.Themes())
}
