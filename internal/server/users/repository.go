package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the credential store consumed by the Service.
//
// Insert must enforce email uniqueness atomically and report a duplicate
// with an error matching common.ErrConflict. FindByEmail and FindByID report
// absence with an error matching common.ErrNotFound.
type Repository interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
