package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// ErrNegativeStock signals a stock overwrite below zero.
var ErrNegativeStock = errors.New("catalog: stock cannot be negative")

const numberPrefix = "PRD"

// Service implements catalog rules.
type Service struct {
	repo     Repository
	sequence shared.Sequencer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, sequence shared.Sequencer, logger *slog.Logger) *Service {
	return &Service{repo: repo, sequence: sequence, logger: logger}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if errs := validateProduct(req.Name, req.Category, req.Price); errs.Any() {
		return nil, errs
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return nil, ErrNegativeStock
	}

	id, err := s.sequence.Next(ctx, numberPrefix)
	if err != nil {
		return nil, fmt.Errorf("catalog: issue number: %w", err)
	}

	product := &Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Color:       strings.TrimSpace(req.Color),
		Size:        strings.TrimSpace(req.Size),
		Unit:        strings.TrimSpace(req.Unit),
		Price:       req.Price,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Supplier:    strings.TrimSpace(req.Supplier),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: create: %w", err)
	}
	s.logger.Info("product created", slog.String("id", product.ID), slog.String("name", product.Name))
	return product, nil
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

// LowStock returns products at or below their minimum stock level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.repo.LowStock(ctx)
}

// Update merges editable fields onto an existing product.
func (s *Service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Color != nil {
		product.Color = strings.TrimSpace(*req.Color)
	}
	if req.Size != nil {
		product.Size = strings.TrimSpace(*req.Size)
	}
	if req.Unit != nil {
		product.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, ErrNegativeStock
		}
		product.MinStock = *req.MinStock
	}
	if req.Supplier != nil {
		product.Supplier = strings.TrimSpace(*req.Supplier)
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}

	if errs := validateProduct(product.Name, product.Category, product.Price); errs.Any() {
		return nil, errs
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: update %s: %w", id, err)
	}
	return product, nil
}

// UpdateStock overwrites the stock level. Status stays derived.
func (s *Service) UpdateStock(ctx context.Context, id string, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Stock = stock
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: update stock %s: %w", id, err)
	}
	s.logger.Info("stock updated",
		slog.String("id", id),
		slog.Int("stock", stock),
		slog.String("state", string(product.StockState())),
	)
	return product, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateProduct(name, category string, price float64) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "product name is required"
	}
	if strings.TrimSpace(category) == "" {
		errs["category"] = "category is required"
	}
	if price < 0 {
		errs["price"] = "price cannot be negative"
	}
	return errs
}
