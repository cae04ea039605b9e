package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/storage"
	"github.com/dukerupert/pantry/internal/telemetry"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MaxImageSize is the largest product image accepted for upload.
const MaxImageSize = 5 << 20

// maxRememberedFilters bounds the listings kept for offline fallback and
// refresh. The least recently served filter is dropped first.
const maxRememberedFilters = 128

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ProductService provides catalog reads for customers and catalog
// management for admins. Reads fall back to the last known result when the
// backend cannot be reached.
type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadImage(ctx context.Context, upload ImageUpload) (*domain.Product, error)

	// Refresh re-fetches every listing and product served so far.
	Refresh(ctx context.Context) error
}

// ImageUpload is a product image submitted by an admin.
type ImageUpload struct {
	ProductID   string
	ContentType string
	Size        int64
	Content     io.Reader
}

type productService struct {
	repo    domain.ProductRepository
	files   storage.Storage
	gate    *connectivity.Gate
	logger  *slog.Logger
	now     func() time.Time
	lists   *connectivity.Fallback[[]domain.Product]
	details *connectivity.Fallback[domain.Product]
	filters *lru.Cache[string, domain.ProductFilter]
}

// NewProductService creates a new ProductService instance
func NewProductService(repo domain.ProductRepository, files storage.Storage, gate *connectivity.Gate, logger *slog.Logger) ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &productService{
		repo:    repo,
		files:   files,
		gate:    gate,
		logger:  logger,
		now:     time.Now,
		lists:   connectivity.NewFallback[[]domain.Product](),
		details: connectivity.NewFallback[domain.Product](),
	}
	// NewWithEvict only fails for a non-positive size.
	s.filters, _ = lru.NewWithEvict(maxRememberedFilters, func(key string, _ domain.ProductFilter) {
		s.lists.Forget(key)
	})
	return s
}

// ListProducts remembers a filter for fallback and refresh only after a
// fresh read. A category that matched nothing is not remembered.
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	key := filter.Key()

	products, stale, err := s.lists.Read(ctx, key, []domain.Product{}, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.ListProducts(ctx, filter)
	})
	if err != nil {
		return nil, opError("ProductService.ListProducts", err, "Failed to list products")
	}
	if stale {
		telemetry.Business.Fallback("products")
		s.logger.Warn("serving last known product listing", "filter", key)
		return products, nil
	}

	if len(products) == 0 && filter.Category != "" {
		s.filters.Remove(key)
		s.lists.Forget(key)
	} else {
		s.filters.Add(key, filter)
	}

	for _, p := range products {
		s.details.Store(p.ID, p)
	}
	return products, nil
}

// GetProduct falls back to the last known copy of the product. With no copy
// to serve, an offline error is returned.
func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductService.GetProduct"

	p, err := s.repo.GetProduct(ctx, id)
	if err == nil {
		s.details.Store(id, *p)
		return p, nil
	}
	if !connectivity.IsNetworkError(err) {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.details.Forget(id)
		}
		return nil, opError(op, err, "Failed to load product")
	}

	cached, ok := s.details.Load(id)
	if !ok {
		return nil, opError(op, err, "Failed to load product")
	}
	telemetry.Business.Fallback("product")
	return &cached, nil
}

func (s *productService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const op = "ProductService.CreateProduct"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	normalizeProduct(&p)
	if err := p.Validate(op); err != nil {
		return nil, err
	}

	now := s.now()
	p.ID = ""
	p.InStock = false
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return nil, opError(op, err, "Failed to create product")
	}

	s.details.Store(p.ID, p)
	s.logger.Info("product created", "product_id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProduct saves the editable fields. Stock and creation time are kept
// from the stored product.
func (s *productService) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const op = "ProductService.UpdateProduct"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	normalizeProduct(&p)
	if err := p.Validate(op); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, opError(op, err, "Failed to load product")
	}

	existing.Name = p.Name
	existing.Description = p.Description
	existing.Category = p.Category
	existing.Price = p.Price
	existing.Featured = p.Featured
	if p.ImageURL != "" && p.ImageURL != existing.ImageURL {
		existing.ImageURL = p.ImageURL
		existing.ImageKey = ""
	}
	existing.UpdatedAt = s.now()

	if err := s.repo.UpdateProduct(ctx, existing); err != nil {
		return nil, opError(op, err, "Failed to update product")
	}

	s.details.Store(existing.ID, *existing)
	return existing, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	const op = "ProductService.DeleteProduct"

	if err := s.gate.RequireOnline(op); err != nil {
		return err
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return opError(op, err, "Failed to load product")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return opError(op, err, "Failed to delete product")
	}
	s.details.Forget(id)
	s.removeImage(ctx, existing.ImageKey)

	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func (s *productService) UploadImage(ctx context.Context, upload ImageUpload) (*domain.Product, error) {
	const op = "ProductService.UploadImage"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	if upload.Content == nil || upload.Size == 0 {
		return nil, domain.WithOp(ErrImageRequired, op)
	}
	if upload.Size > MaxImageSize {
		return nil, domain.WithOp(ErrImageTooLarge, op)
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(upload.ContentType))]
	if !ok {
		return nil, domain.WithOp(ErrUnsupportedImageType, op)
	}

	product, err := s.repo.GetProduct(ctx, upload.ProductID)
	if err != nil {
		return nil, opError(op, err, "Failed to load product")
	}

	key := path.Join("products", product.ID, uuid.NewString()+ext)
	url, err := s.files.Put(ctx, key, io.LimitReader(upload.Content, MaxImageSize), upload.ContentType)
	if err != nil {
		return nil, opError(op, err, "Failed to store image")
	}

	previous := product.ImageKey
	product.ImageURL = url
	product.ImageKey = key
	product.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		s.removeImage(ctx, key)
		return nil, opError(op, err, "Failed to update product")
	}

	s.removeImage(ctx, previous)
	s.details.Store(product.ID, *product)
	s.logger.Info("product image uploaded", "product_id", product.ID, "key", key)
	return product, nil
}

func (s *productService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete product image", "key", key, "error", err)
	}
}

func (s *productService) Refresh(ctx context.Context) error {
	var failed int
	for _, key := range s.filters.Keys() {
		f, ok := s.filters.Peek(key)
		if !ok {
			continue
		}
		products, err := s.repo.ListProducts(ctx, f)
		if err != nil {
			failed++
			continue
		}
		s.lists.Store(f.Key(), products)
		for _, p := range products {
			s.details.Store(p.ID, p)
		}
	}
	for _, id := range s.details.Keys() {
		p, err := s.repo.GetProduct(ctx, id)
		switch {
		case err == nil:
			s.details.Store(id, *p)
		case domain.IsCode(err, domain.ENOTFOUND):
			s.details.Forget(id)
		default:
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("refresh products: %d reads failed", failed)
	}
	return nil
}

func normalizeProduct(p *domain.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
}
