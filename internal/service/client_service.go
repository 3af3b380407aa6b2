package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/opdexport/quotation-api/internal/auth"
	"github.com/opdexport/quotation-api/internal/domain"
	"github.com/opdexport/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientService manages the shared buyer address book. Clients belong to no
// company; any represented seller may quote to any client.
type ClientService struct {
	repo   *repository.ClientRepository
	logger *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(repo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// Create registers a client. Admins and sellers may register clients.
func (s *ClientService) Create(ctx context.Context, principal *auth.Principal, in *domain.CreateClientRequest) (*domain.Client, error) {
	if !principal.IsAdmin() && !principal.CanActAsSeller() {
		return nil, ErrForbidden
	}

	if _, err := s.repo.GetByTaxID(ctx, in.TaxID); err == nil {
		return nil, ErrDuplicateTaxID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tax id: %w", err)
	}

	client := &domain.Client{
		Name:          in.Name,
		TaxID:         in.TaxID,
		Email:         in.Email,
		Phone:         in.Phone,
		ContactPerson: in.ContactPerson,
		Address:       in.Address,
		City:          in.City,
		IsActive:      true,
	}
	if in.Country != "" {
		client.Country = in.Country
	}

	if err := s.repo.Create(ctx, client); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTaxID
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("name", client.Name))

	return client, nil
}

// GetByID loads a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return client, nil
}

// Update overwrites mutable client fields
func (s *ClientService) Update(ctx context.Context, principal *auth.Principal, id uuid.UUID, in *domain.CreateClientRequest) (*domain.Client, error) {
	if !principal.IsAdmin() && !principal.CanActAsSeller() {
		return nil, ErrForbidden
	}

	client, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = in.Name
	client.Email = in.Email
	client.Phone = in.Phone
	client.ContactPerson = in.ContactPerson
	client.Address = in.Address
	client.City = in.City
	if in.Country != "" {
		client.Country = in.Country
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logger.Info("client updated", zap.String("client_id", id.String()))

	return client, nil
}

// Delete removes a client without quotation history
func (s *ClientService) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountQuotations(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count quotations: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: client has quotation history", ErrInvalidState)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logger.Info("client deleted", zap.String("client_id", id.String()))

	return nil
}

// List returns a page of clients
func (s *ClientService) List(ctx context.Context, page, pageSize int, search string) ([]domain.Client, int64, error) {
	return s.repo.List(ctx, page, pageSize, search)
}
