package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"ooru-foods/libs"
	"ooru-foods/models"
	"ooru-foods/repositories"
	"ooru-foods/utils"

	"github.com/tealeg/xlsx"
)

const productListCachePrefix = "products_list_"

type ProductService struct {
	repo     ProductStore
	cache    *libs.Cache
	uploader ImageUploader
	images   *utils.ImageResolver
	cacheTTL time.Duration
}

// NewProductService accepts a nil cache or uploader; both features are then disabled.
func NewProductService(repo ProductStore, cache *libs.Cache, uploader ImageUploader, images *utils.ImageResolver, cacheTTL time.Duration) *ProductService {
	return &ProductService{
		repo:     repo,
		cache:    cache,
		uploader: uploader,
		images:   images,
		cacheTTL: cacheTTL,
	}
}

func productListCacheKey(page, limit int) string {
	return fmt.Sprintf("%sp%d_l%d", productListCachePrefix, page, limit)
}

func (s *ProductService) withImage(p models.Product) models.Product {
	resolved := s.images.Resolve(p.ImageURL)
	p.ImageURL = &resolved
	return p
}

func (s *ProductService) withImages(products []models.Product) []models.Product {
	for i := range products {
		products[i] = s.withImage(products[i])
	}
	return products
}

func (s *ProductService) GetByID(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved := s.withImage(*p)
	return &resolved, nil
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.withImages(products), nil
}

func (s *ProductService) Search(ctx context.Context, term string) ([]models.Product, error) {
	products, err := s.repo.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}
	return s.withImages(products), nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *ProductService) List(ctx context.Context, page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	if limit > 100 {
		limit = 100
	}

	key := productListCacheKey(page, limit)
	if cached, ok := s.cache.Get(ctx, key); ok {
		var resp models.PaginationResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return &resp, nil
		}
	}

	products, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	resp := &models.PaginationResponse{
		Success: true,
		Message: "Products retrieved successfully",
		Data:    s.withImages(products),
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}

	if raw, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, string(raw), s.cacheTTL)
	}
	return resp, nil
}

// Recommendations returns products from the same category first, topped up
// from the general listing, never including the product itself.
func (s *ProductService) Recommendations(ctx context.Context, productID, limit int) ([]models.Recommendation, error) {
	if limit < 1 {
		limit = 4
	}
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListByCategory(ctx, product.Category)
	if err != nil {
		return nil, err
	}
	if len(candidates) <= limit {
		others, _, err := s.repo.List(ctx, 1, limit+1)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, others...)
	}

	seen := map[int]bool{productID: true}
	recs := []models.Recommendation{}
	for _, p := range candidates {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		recs = append(recs, s.withImage(p).ToRecommendation())
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

// GetBatch loads products from the enhanced table and looks up any ids it
// lacks in the base table. The enhanced row wins when both have an id.
func (s *ProductService) GetBatch(ctx context.Context, ids []int) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	products, err := s.repo.GetByIDs(ctx, repositories.TableEnhancedProducts, ids)
	if err != nil {
		slog.WarnContext(ctx, "enhanced product lookup failed, using base table", "error", err)
		products = nil
	}

	found := make(map[int]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	missing := make([]int, 0, len(ids))
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		base, err := s.repo.GetByIDs(ctx, repositories.TableProducts, missing)
		if err != nil {
			return nil, err
		}
		products = append(products, base...)
	}
	if products == nil {
		products = []models.Product{}
	}
	return s.withImages(products), nil
}

// ImageUpload is an image file attached to a product create request.
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

func validateProduct(req models.CreateProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return models.NewValidationError("name", "product name is required")
	}
	if req.Price == 0 {
		return models.NewValidationError("price", "product price is required")
	}
	if req.Price < 0 {
		return models.NewValidationError("price", "price must be greater than zero")
	}
	if req.Stock <= 0 {
		return models.NewValidationError("stock", "stock must be greater than zero")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest, image *ImageUpload) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	spice, err := models.ParseSpiceLevel(req.SpiceLevel)
	if err != nil {
		return nil, models.NewValidationError("spice_level", err.Error())
	}

	product := &models.Product{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		SpiceLevel:   spice,
		IsVegetarian: req.IsVegetarian,
		Stock:        req.Stock,
	}
	if req.ImageURL != "" {
		product.ImageURL = &req.ImageURL
	}

	if image != nil {
		if s.uploader == nil {
			return nil, models.NewValidationError("image", "image upload is not configured")
		}
		if err := utils.ValidateImageFile(image.Filename, image.Size); err != nil {
			return nil, models.NewValidationError("image", err.Error())
		}
		url, err := s.uploader.UploadImage(ctx, image.Reader, image.Filename, "products")
		if err != nil {
			return nil, err
		}
		product.ImageURL = &url
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, productListCachePrefix)

	resolved := s.withImage(*product)
	return &resolved, nil
}

// ExportXLSX writes the whole catalog as a single-sheet workbook.
func (s *ProductService) ExportXLSX(ctx context.Context, w io.Writer) error {
	const pageSize = 100

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headers := []string{"ID", "Name", "Description", "Category", "Price", "Stock", "Spice Level", "Vegetarian", "Image", "Created At"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for page := 1; ; page++ {
		products, total, err := s.repo.List(ctx, page, pageSize)
		if err != nil {
			return err
		}
		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Description)
			row.AddCell().SetValue(p.Category)
			row.AddCell().SetValue(p.Price)
			row.AddCell().SetValue(p.Stock)
			spice := ""
			if p.SpiceLevel != nil {
				spice = string(*p.SpiceLevel)
			}
			row.AddCell().SetValue(spice)
			veg := ""
			if p.IsVegetarian != nil {
				veg = fmt.Sprintf("%t", *p.IsVegetarian)
			}
			row.AddCell().SetValue(veg)
			row.AddCell().SetValue(s.images.Resolve(p.ImageURL))
			created := ""
			if p.CreatedAt != nil {
				created = p.CreatedAt.Format("2006-01-02 15:04:05")
			}
			row.AddCell().SetValue(created)
		}
		if len(products) == 0 || page*pageSize >= total {
			break
		}
	}

	return file.Write(w)
}
