package users

import (
	"fmt"

	"sams/internal/repository"
	custom_error "sams/pkg/errors"
	"sams/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type UserRepository interface {
	PersistUser(orgID int, req models.CreateUserRequest, hashedPassword []byte) error
	GetUser(id, orgID int) (*models.User, error)
	GetUsers(orgID int) ([]models.User, error)
}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(orgID int, req models.CreateUserRequest, hashedPassword []byte) error {
	query := r.repository.Goqu.Insert("users").
		Rows(goqu.Record{
			"organization_id": orgID,
			"username":        req.Username,
			"fullname":        req.Fullname,
			"email":           req.Email,
			"password_hash":   string(hashedPassword),
			"role":            req.Role,
		})

	if _, err := query.Executor().Exec(); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return custom_error.WrapDBError("Username already taken", string(pqErr.Code))
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *userRepositoryImpl) GetUsers(orgID int) ([]models.User, error) {
	var users []models.User

	query := r.repository.Goqu.
		Select("id", "organization_id", "username", "fullname", "email", "role").
		From("users").
		Where(goqu.Ex{"organization_id": orgID}).
		Order(goqu.C("fullname").Asc())

	if err := query.Executor().ScanStructs(&users); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, nil
}

func (r *userRepositoryImpl) GetUser(id, orgID int) (*models.User, error) {
	var user models.User

	query := r.repository.Goqu.
		Select("id", "organization_id", "username", "fullname", "email", "role").
		From("users").
		Where(goqu.Ex{"id": id, "organization_id": orgID})

	found, err := query.Executor().ScanStruct(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, custom_error.ErrUserNotFound
	}

	return &user, nil
}
