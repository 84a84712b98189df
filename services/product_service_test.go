package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ooru-foods/libs"
	"ooru-foods/models"
	"ooru-foods/repositories"
	"ooru-foods/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type fakeProductRepo struct {
	tables    map[string][]models.Product
	failTable string
	listCalls int
	created   []*models.Product
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	return &fakeProductRepo{tables: map[string][]models.Product{
		repositories.TableProducts: products,
	}}
}

func (f *fakeProductRepo) base() []models.Product {
	return f.tables[repositories.TableProducts]
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	for _, p := range f.base() {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeProductRepo) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.base() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) List(ctx context.Context, page, limit int) ([]models.Product, int, error) {
	f.listCalls++
	all := f.base()
	start := (page - 1) * limit
	if start >= len(all) {
		return []models.Product{}, len(all), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]models.Product{}, all[start:end]...), len(all), nil
}

func (f *fakeProductRepo) Search(ctx context.Context, term string) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.base() {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Categories(ctx context.Context) ([]string, error) {
	return []string{"breakfast", "snacks"}, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, table string, ids []int) ([]models.Product, error) {
	if table == f.failTable {
		return nil, errors.New("relation does not exist")
	}
	want := map[int]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Product{}
	for _, p := range f.tables[table] {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	product.ID = 100 + len(f.created)
	f.created = append(f.created, product)
	return nil
}

type fakeUploader struct {
	folder string
}

func (f *fakeUploader) UploadImage(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	f.folder = folder
	return "https://res.cloudinary.com/ooru/" + folder + "/" + filename, nil
}

func newProductService(repo *fakeProductRepo, cache *libs.Cache, uploader ImageUploader) *ProductService {
	return NewProductService(repo, cache, uploader, utils.NewImageResolver("https://ooru.supabase.co/", "product-images"), time.Minute)
}

func strPtr(s string) *string { return &s }

func TestProductService_ResolvesImages(t *testing.T) {
	p := idli
	p.ImageURL = strPtr("idli.png")
	q := dosa
	q.ImageURL = strPtr("https://cdn.example.com/dosa.png")
	svc := newProductService(newFakeProductRepo(p, q, vada), nil, nil)

	got, err := svc.GetByID(context.Background(), idli.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://ooru.supabase.co/storage/v1/object/public/product-images/idli.png", *got.ImageURL)

	list, err := svc.ListByCategory(context.Background(), "breakfast")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://cdn.example.com/dosa.png", *list[1].ImageURL)

	found, err := svc.Search(context.Background(), "  vada ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, utils.PlaceholderImage, *found[0].ImageURL)
}

func TestProductService_GetByIDNotFound(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), nil, nil)

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProductService_GetBatchFallsBackToBaseTable(t *testing.T) {
	repo := newFakeProductRepo(idli, dosa)
	svc := newProductService(repo, nil, nil)
	ctx := context.Background()

	got, err := svc.GetBatch(ctx, []int{idli.ID, dosa.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	repo.failTable = repositories.TableEnhancedProducts
	got, err = svc.GetBatch(ctx, []int{dosa.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dosa.Name, got[0].Name)
}

func TestProductService_GetBatchPrefersEnhancedTable(t *testing.T) {
	enhanced := idli
	enhanced.Name = "Podi Idli (enhanced)"
	repo := newFakeProductRepo(idli)
	repo.tables[repositories.TableEnhancedProducts] = []models.Product{enhanced}
	svc := newProductService(repo, nil, nil)

	got, err := svc.GetBatch(context.Background(), []int{idli.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Podi Idli (enhanced)", got[0].Name)
}

func TestProductService_GetBatchMergesPartialEnhanced(t *testing.T) {
	enhanced := idli
	enhanced.Name = "Podi Idli (enhanced)"
	repo := newFakeProductRepo(idli, dosa)
	repo.tables[repositories.TableEnhancedProducts] = []models.Product{enhanced}
	svc := newProductService(repo, nil, nil)

	got, err := svc.GetBatch(context.Background(), []int{idli.ID, dosa.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[int]string{}
	for _, p := range got {
		byID[p.ID] = p.Name
	}
	assert.Equal(t, "Podi Idli (enhanced)", byID[idli.ID])
	assert.Equal(t, dosa.Name, byID[dosa.ID])
}

func TestProductService_GetBatchEmptyIDs(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), nil, nil)

	got, err := svc.GetBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProductService_ListPaginates(t *testing.T) {
	svc := newProductService(newFakeProductRepo(idli, dosa, vada), nil, nil)

	resp, err := svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.Limit)
	assert.Equal(t, 3, resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	products, ok := resp.Data.([]models.Product)
	require.True(t, ok)
	assert.Len(t, products, 2)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *libs.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, libs.NewCache(client)
}

func TestProductService_ListIsCached(t *testing.T) {
	mr, cache := setupTestRedis(t)
	repo := newFakeProductRepo(idli, dosa, vada)
	svc := newProductService(repo, cache, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, 1, 12)
	require.NoError(t, err)
	cached, err := svc.List(ctx, 1, 12)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 3, cached.Meta.TotalItems)
	assert.True(t, mr.Exists("products_list_p1_l12"))
}

func TestProductService_CreateInvalidatesListCache(t *testing.T) {
	mr, cache := setupTestRedis(t)
	uploader := &fakeUploader{}
	svc := newProductService(newFakeProductRepo(idli), cache, uploader)
	ctx := context.Background()

	_, err := svc.List(ctx, 1, 12)
	require.NoError(t, err)
	require.True(t, mr.Exists("products_list_p1_l12"))

	product, err := svc.Create(ctx, models.CreateProductRequest{
		Name:       "  Mysore Bonda ",
		Category:   "snacks",
		Price:      80,
		Stock:      10,
		SpiceLevel: "medium",
	}, &ImageUpload{Filename: "bonda.jpg", Size: 1024, Reader: bytes.NewReader([]byte("img"))})
	require.NoError(t, err)

	assert.Equal(t, "Mysore Bonda", product.Name)
	assert.Equal(t, "https://res.cloudinary.com/ooru/products/bonda.jpg", *product.ImageURL)
	require.NotNil(t, product.SpiceLevel)
	assert.Equal(t, models.SpiceMedium, *product.SpiceLevel)
	assert.Equal(t, "products", uploader.folder)
	assert.False(t, mr.Exists("products_list_p1_l12"))
}

func TestProductService_CreateValidation(t *testing.T) {
	valid := models.CreateProductRequest{Name: "Vada", Category: "snacks", Price: 60, Stock: 5}

	tests := []struct {
		name    string
		mutate  func(r *models.CreateProductRequest)
		image   *ImageUpload
		field   string
		message string
	}{
		{name: "missing name", mutate: func(r *models.CreateProductRequest) { r.Name = " " }, field: "name", message: "product name is required"},
		{name: "missing price", mutate: func(r *models.CreateProductRequest) { r.Price = 0 }, field: "price", message: "product price is required"},
		{name: "negative price", mutate: func(r *models.CreateProductRequest) { r.Price = -5 }, field: "price", message: "price must be greater than zero"},
		{name: "zero stock", mutate: func(r *models.CreateProductRequest) { r.Stock = 0 }, field: "stock", message: "stock must be greater than zero"},
		{name: "bad spice level", mutate: func(r *models.CreateProductRequest) { r.SpiceLevel = "volcanic" }, field: "spice_level"},
		{name: "upload without uploader", image: &ImageUpload{Filename: "a.png", Size: 1}, field: "image", message: "image upload is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProductRepo()
			svc := newProductService(repo, nil, nil)
			req := valid
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			_, err := svc.Create(context.Background(), req, tt.image)
			require.ErrorIs(t, err, models.ErrValidation)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, verr.Message)
			}
			assert.Empty(t, repo.created)
		})
	}
}

func TestProductService_CreateRejectsBadImage(t *testing.T) {
	svc := newProductService(newFakeProductRepo(), nil, &fakeUploader{})

	_, err := svc.Create(context.Background(),
		models.CreateProductRequest{Name: "Vada", Category: "snacks", Price: 60, Stock: 5},
		&ImageUpload{Filename: "menu.pdf", Size: 10})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProductService_Recommendations(t *testing.T) {
	pongal := models.Product{ID: 4, Name: "Ven Pongal", Price: 120, Category: "breakfast"}
	svc := newProductService(newFakeProductRepo(idli, dosa, vada, pongal), nil, nil)

	recs, err := svc.Recommendations(context.Background(), idli.ID, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	ids := []int{}
	for _, r := range recs {
		assert.NotEqual(t, idli.ID, r.ID)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{dosa.ID, pongal.ID, vada.ID}, ids)
}

func TestProductService_ExportXLSX(t *testing.T) {
	svc := newProductService(newFakeProductRepo(idli, dosa, vada), nil, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Podi Idli", sheet.Rows[1].Cells[1].Value)
}
