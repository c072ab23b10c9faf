package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fixlab/api-core/internal/models"
	"github.com/fixlab/api-core/internal/storage"
	"github.com/fixlab/api-core/internal/store"
)

// Postgres unique_violation.
const uniqueViolationCode = "23505"

// PrincipalRepository is the Postgres-backed PrincipalStore.
type PrincipalRepository struct {
	db *storage.Postgres
}

func NewPrincipalRepository(db *storage.Postgres) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	return translateCreateError(r.db.DB.WithContext(ctx).Create(p).Error)
}

// translateCreateError maps unique-constraint violations onto the store's
// sentinel errors, keyed by the violated constraint.
func translateCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return store.ErrDuplicateEmail
		}
		return store.ErrDuplicateKeyHash
	}

	return err
}

func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	var p models.Principal
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &p, err
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var p models.Principal
	err := r.db.DB.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&p).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &p, err
}

func (r *PrincipalRepository) FindByKeyHash(ctx context.Context, hash string) (*models.Principal, error) {
	var p models.Principal
	err := r.db.DB.WithContext(ctx).
		Where("api_key_hash = ?", hash).
		First(&p).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &p, err
}

// IncrementRequests performs the increment in a single UPDATE so that
// concurrent requests for the same principal never under-count.
func (r *PrincipalRepository) IncrementRequests(ctx context.Context, id uuid.UUID) (int64, error) {
	var p models.Principal
	err := r.db.DB.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "requests_used"}}}).
		Where("id = ?", id).
		UpdateColumn("requests_used", gorm.Expr("requests_used + 1")).Error

	return p.RequestsUsed, err
}

func (r *PrincipalRepository) ResetUsage(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.Principal{}).
		Where("requests_used > 0 OR last_reset_at IS NULL").
		UpdateColumns(map[string]interface{}{
			"requests_used": 0,
			"last_reset_at": now,
		})

	return result.RowsAffected, result.Error
}

func (r *PrincipalRepository) List(ctx context.Context) ([]models.Principal, error) {
	var principals []models.Principal
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&principals).Error

	return principals, err
}
