package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/emerssive/Chrome-Extension/internal/affiliate"
	"github.com/emerssive/Chrome-Extension/internal/auth"
	"github.com/emerssive/Chrome-Extension/internal/database"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrAccessDenied       = errors.New("access denied")
	ErrProductNotFound    = errors.New("product not found")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

const (
	minPasswordLength = 6
	maxNameLength     = 500
)

type Store interface {
	Transaction(ctx context.Context, fn func(pgx.Tx) error) error

	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateRegistry(ctx context.Context, r *models.Registry) error
	ListRegistries(ctx context.Context, userID int64) ([]models.Registry, error)
	GetRegistry(ctx context.Context, id, userID int64) (*models.Registry, error)

	InsertProductTx(ctx context.Context, tx pgx.Tx, p *models.SavedProduct) error
	LinkRegistryProductTx(ctx context.Context, tx pgx.Tx, registryID, productID int64) error
	DeleteProductTx(ctx context.Context, tx pgx.Tx, id, userID int64) (*models.SavedProduct, error)
	ListProducts(ctx context.Context, f database.ProductFilter) (*database.ProductPage, error)
}

type EventPublisher interface {
	ProductSaved(ctx context.Context, tx pgx.Tx, userID int64, p *models.SavedProduct) error
	ProductDeleted(ctx context.Context, tx pgx.Tx, userID int64, p *models.SavedProduct) error
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type Service struct {
	store     Store
	events    EventPublisher
	tokens    TokenIssuer
	affiliate affiliate.Generator
	logger    *slog.Logger
}

func NewService(store Store, events EventPublisher, tokens TokenIssuer, links affiliate.Generator, logger *slog.Logger) *Service {
	if links == nil {
		links = affiliate.NopGenerator{}
	}
	return &Service{
		store:     store,
		events:    events,
		tokens:    tokens,
		affiliate: links,
		logger:    logger.With("component", "registry"),
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var fields []string
	if name == "" {
		fields = append(fields, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		fields = append(fields, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login returns a session token for a matching email and password. Unknown
// emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

func (s *Service) CreateRegistry(ctx context.Context, userID int64, name string, description *string) (*models.Registry, error) {
	r := &models.Registry{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
	}

	if fields := r.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.store.CreateRegistry(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("registry created", "registry_id", r.ID, "user_id", userID)
	return r, nil
}

func (s *Service) ListRegistries(ctx context.Context, userID int64) ([]models.Registry, error) {
	return s.store.ListRegistries(ctx, userID)
}

// AddProduct saves one candidate into a registry owned by userID and returns
// the stored product.
func (s *Service) AddProduct(ctx context.Context, userID, registryID int64, c models.Candidate, storeURL string) (*models.SavedProduct, error) {
	c.Name = strings.TrimSpace(c.Name)
	if fields := validateCandidate(c); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.store.GetRegistry(ctx, registryID, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}

	product := &models.SavedProduct{
		RegistryID:  registryID,
		Name:        c.Name,
		Price:       c.Price,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Rating:      c.Rating,
		ReviewCount: c.ReviewCount,
		ProductURL:  c.ProductURL,
		StoreURL:    models.StringPtr(storeURL),
	}

	link, err := s.affiliate.Generate(ctx, c)
	if err != nil {
		s.logger.Warn("affiliate link generation failed", "name", c.Name, "error", err)
	} else {
		product.AffiliateLink = models.StringPtr(link)
	}

	err = s.store.Transaction(ctx, func(tx pgx.Tx) error {
		if err := s.store.InsertProductTx(ctx, tx, product); err != nil {
			return err
		}
		if err := s.store.LinkRegistryProductTx(ctx, tx, registryID, product.ID); err != nil {
			return err
		}
		return s.events.ProductSaved(ctx, tx, userID, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product saved",
		"product_id", product.ID,
		"registry_id", registryID,
		"user_id", userID,
	)
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, f database.ProductFilter) (*database.ProductPage, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, &ValidationError{Fields: []string{"minPrice cannot be greater than maxPrice"}}
	}
	return s.store.ListProducts(ctx, f)
}

func (s *Service) DeleteProduct(ctx context.Context, userID, productID int64) error {
	err := s.store.Transaction(ctx, func(tx pgx.Tx) error {
		product, err := s.store.DeleteProductTx(ctx, tx, productID, userID)
		if err != nil {
			return err
		}
		return s.events.ProductDeleted(ctx, tx, userID, product)
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.logger.Info("product deleted", "product_id", productID, "user_id", userID)
	return nil
}

func validateCandidate(c models.Candidate) []string {
	var fields []string

	if c.Name == "" {
		fields = append(fields, "name is required")
	}
	if len(c.Name) > maxNameLength {
		fields = append(fields, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	if c.Price.IsNegative() {
		fields = append(fields, "price must not be negative")
	}
	if c.Rating != nil && *c.Rating < 0 {
		fields = append(fields, "rating must not be negative")
	}
	if c.ReviewCount != nil && *c.ReviewCount < 0 {
		fields = append(fields, "reviewCount must not be negative")
	}

	return fields
}
