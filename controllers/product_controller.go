package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"ooru-foods/models"
	"ooru-foods/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// @Summary Get all categories
// @Description Get list of all product categories
// @Tags Products
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Response
// @Router /categories [get]
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.products.Categories(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to get categories", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Categories retrieved", Data: categories})
}

// @Summary Get products
// @Description Paginated catalog, or products of one category, or a name search
// @Tags Products
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(12)
// @Param category query string false "Filter by category"
// @Param search query string false "Search by name or description"
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		products, err := ctrl.products.Search(ctx, search)
		if err != nil {
			respondError(c, "Failed to search products", err)
			return
		}
		c.JSON(http.StatusOK, models.Response{Success: true, Message: "Products retrieved", Data: products})
		return
	}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		products, err := ctrl.products.ListByCategory(ctx, category)
		if err != nil {
			respondError(c, "Failed to get products", err)
			return
		}
		c.JSON(http.StatusOK, models.Response{Success: true, Message: "Products retrieved", Data: products})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	resp, err := ctrl.products.List(ctx, page, limit)
	if err != nil {
		respondError(c, "Failed to get products", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid product ID", err)
		return
	}

	product, err := ctrl.products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Product not found", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: product})
}

// @Summary Get recommendations
// @Description Products to show alongside the given one
// @Tags Products
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Product ID"
// @Param limit query int false "Maximum results" default(4)
// @Success 200 {object} models.Response
// @Router /products/{id}/recommendations [get]
func (ctrl *ProductController) GetRecommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid product ID", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))

	recs, err := ctrl.products.Recommendations(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, "Failed to get recommendations", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Recommendations retrieved", Data: recs})
}

// @Summary Create product
// @Description Create a catalog product (Admin)
// @Tags Admin - Products
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param name formData string true "Product name"
// @Param description formData string false "Description"
// @Param category formData string true "Category"
// @Param price formData number true "Price"
// @Param stock formData int true "Stock"
// @Param spice_level formData string false "Spice level" Enums(mild, medium, hot, extra_hot)
// @Param is_vegetarian formData bool false "Vegetarian"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Response
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "Invalid product data", err)
		return
	}

	var upload *services.ImageUpload
	if header, err := c.FormFile("image"); err == nil {
		file, err := header.Open()
		if err != nil {
			respondBadRequest(c, "Failed to read image", err)
			return
		}
		defer file.Close()
		upload = &services.ImageUpload{Filename: header.Filename, Size: header.Size, Reader: file}
	}

	product, err := ctrl.products.Create(c.Request.Context(), req, upload)
	if err != nil {
		respondError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product created successfully", Data: product})
}

// @Summary Export products
// @Description Download the catalog as an Excel workbook (Admin)
// @Tags Admin - Products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /admin/products/export [get]
func (ctrl *ProductController) ExportProducts(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := ctrl.products.ExportXLSX(c.Request.Context(), c.Writer); err != nil {
		c.Header("Content-Disposition", "")
		respondError(c, "Failed to export products", err)
		return
	}
}
