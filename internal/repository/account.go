package repository

import (
	"context"
	"strings"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"gorm.io/gorm"
)

// AccountRepository stores sign-in identities.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

type accountRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewAccountRepository creates a gorm backed account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db, log: observability.NewRepoLogger("accounts")}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = normalizeEmail(account.Email)
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return gormError(err, "Account", account.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"uid": account.ID})
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "Account", id)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = normalizeEmail(email)
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, gormError(err, "Account", email)
	}
	return &account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
