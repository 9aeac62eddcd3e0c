package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
)

// CatalogService defines the methods for browsing and maintaining the catalog.
type CatalogService interface {
	// FindAll returns available products with pagination support.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// FindByID retrieves a single product with its variants.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindByCategory returns the products of a category.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	FindByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int32) ([]ProductDto, error)

	// Categories returns all categories.
	Categories(ctx context.Context) ([]CategoryDto, error)

	// CreateCategory adds a new category.
	// Returns ErrCategoryExists if the name is already taken.
	CreateCategory(ctx context.Context, dto CategoryCreateDto) (*CategoryDto, error)

	// CreateProduct adds a product with its variant matrix. The whole batch is
	// validated up front and stored atomically; a duplicate attribute combination
	// fails the entire request with ErrVariantMatrix.
	CreateProduct(ctx context.Context, dto ProductCreateDto) (*ProductDto, error)
}

// Catalog implements CatalogService and provides methods to browse and maintain products.
type Catalog struct {
	repository store.CatalogStore
	publisher  messaging.Publisher
}

// NewCatalogService creates a new CatalogService with the provided repository and publisher.
func NewCatalogService(repo store.CatalogStore, publisher messaging.Publisher) *Catalog {
	return &Catalog{
		repository: repo,
		publisher:  publisher,
	}
}

// CategoryDto represents the data transfer object for a category.
type CategoryDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// CategoryCreateDto represents the data transfer object for creating a category.
type CategoryCreateDto struct {
	Name string `json:"name" validate:"required,max=100"`
}

// VariantDto represents the data transfer object for a product variant.
type VariantDto struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int32  `json:"stock"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string       `json:"id"`
	CategoryID  string       `json:"category_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       int64        `json:"price"`
	ImageURL    string       `json:"image_url,omitempty"`
	CreatedAt   string       `json:"created_at"`
	Variants    []VariantDto `json:"variants,omitempty"`
}

// VariantCreateDto is one attribute combination of a new product's variant matrix.
type VariantCreateDto struct {
	Size  string `json:"size"  validate:"required,max=20"`
	Color string `json:"color" validate:"required,max=40"`
	Stock int32  `json:"stock" validate:"min=0"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	CategoryID  string             `json:"category_id" validate:"required,uuid"`
	Name        string             `json:"name"        validate:"required,max=100"`
	Description string             `json:"description" validate:"max=2000"`
	Price       int64              `json:"price"       validate:"required,min=0"`
	ImageURL    string             `json:"image_url"   validate:"omitempty,url"`
	Variants    []VariantCreateDto `json:"variants"    validate:"required,gt=0,dive"`
}

func (s *Catalog) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toProductDto(&p, nil)
	}
	return dtos, nil
}

func (s *Catalog) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, variants, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDto(product, variants), nil
}

func (s *Catalog) FindByCategory(ctx context.Context, categoryID uuid.UUID, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindByCategory(ctx, categoryID, offset, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toProductDto(&p, nil)
	}
	return dtos, nil
}

func (s *Catalog) Categories(ctx context.Context) ([]CategoryDto, error) {
	categories, err := s.repository.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	dtos := make([]CategoryDto, len(categories))
	for i, c := range categories {
		dtos[i] = *toCategoryDto(&c)
	}
	return dtos, nil
}

func (s *Catalog) CreateCategory(ctx context.Context, dto CategoryCreateDto) (*CategoryDto, error) {
	category, err := s.repository.CreateCategory(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	return toCategoryDto(category), nil
}

func (s *Catalog) CreateProduct(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	if err := validateVariantMatrix(dto.Variants); err != nil {
		return nil, err
	}

	newProduct := store.NewProduct{
		CategoryID:  uuid.MustParse(dto.CategoryID),
		Name:        dto.Name,
		Description: dto.Description,
		Price:       dto.Price,
		ImageURL:    dto.ImageURL,
	}
	newVariants := make([]store.NewVariant, len(dto.Variants))
	for i, v := range dto.Variants {
		newVariants[i] = store.NewVariant{Size: v.Size, Color: v.Color, Stock: v.Stock}
	}

	product, variants, err := s.repository.CreateProduct(ctx, newProduct, newVariants)
	if err != nil {
		return nil, err
	}

	event := events.ProductCreatedEvent{
		ProductID:    product.ID,
		CategoryID:   product.CategoryID,
		Name:         product.Name,
		VariantCount: len(variants),
		CreatedAt:    product.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ProductCreatedEvent", "error", err)
	}

	return toProductDto(product, variants), nil
}

// validateVariantMatrix rejects the whole batch when an attribute combination repeats.
func validateVariantMatrix(variants []VariantCreateDto) error {
	seen := make(map[[2]string]struct{}, len(variants))
	for _, v := range variants {
		key := [2]string{v.Size, v.Color}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate combination %s/%s: %w", v.Size, v.Color, sferrors.ErrVariantMatrix)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// toCategoryDto converts a store.Category to a CategoryDto.
func toCategoryDto(c *store.Category) *CategoryDto {
	return &CategoryDto{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// toProductDto converts a store.Product and its variants to a ProductDto.
func toProductDto(p *store.Product, variants []store.Variant) *ProductDto {
	if p == nil {
		return nil
	}

	var variantDtos []VariantDto
	if variants != nil {
		variantDtos = make([]VariantDto, 0, len(variants))
		for _, v := range variants {
			variantDtos = append(variantDtos, VariantDto{
				ID:    v.ID.String(),
				Size:  v.Size,
				Color: v.Color,
				Stock: v.Stock,
			})
		}
	}

	return &ProductDto{
		ID:          p.ID.String(),
		CategoryID:  p.CategoryID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		Variants:    variantDtos,
	}
}
