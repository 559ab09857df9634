package service

import (
	"context"
	"fmt"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/model"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"

	"github.com/google/uuid"
)

// Customers and suppliers are thin CRUD: they exist as order references and
// ledger counterparties. Both services share the same response shape.

type CustomerService interface {
	Create(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PartnerResponse, error)
	List(ctx context.Context) ([]dto.PartnerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type SupplierService interface {
	Create(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PartnerResponse, error)
	List(ctx context.Context) ([]dto.PartnerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	c := &model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.PartnerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("customer %s not found", id)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context) ([]dto.PartnerResponse, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PartnerResponse, len(customers))
	for i := range customers {
		out[i] = customerToResponse(&customers[i])
	}
	return out, nil
}

func (s *customerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreatePartnerRequest) (*dto.PartnerResponse, error) {
	sup := &model.Supplier{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.PartnerResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("supplier %s not found", id)
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.PartnerResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PartnerResponse, len(suppliers))
	for i := range suppliers {
		out[i] = supplierToResponse(&suppliers[i])
	}
	return out, nil
}

func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func customerToResponse(c *model.Customer) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:      c.ID.String(),
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
		Active:  c.Active,
	}
}

func supplierToResponse(s *model.Supplier) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Phone:   s.Phone,
		Email:   s.Email,
		Address: s.Address,
		Active:  s.Active,
	}
}
