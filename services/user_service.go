package services

import (
	"errors"

	"quizsystem/apperrors"
	"quizsystem/logger"
	"quizsystem/models"

	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserService(db *gorm.DB, log *logger.Logger) *UserService {
	return &UserService{db: db, log: log}
}

type CreateUserRequest struct {
	Uni  string `json:"uni" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

// CreateOrGet registers a user by their external identifier. Registering
// an identifier that already exists returns the existing row unchanged.
func (s *UserService) CreateOrGet(req *CreateUserRequest) (*models.User, error) {
	var existing models.User
	err := s.db.Where("uni = ?", req.Uni).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to look up user", err)
	}

	user := models.User{Uni: req.Uni, Name: req.Name}
	if err := s.db.Create(&user).Error; err != nil {
		// A concurrent registration of the same uni trips the unique
		// index; resolve it by returning the winner's row.
		var winner models.User
		if ferr := s.db.Where("uni = ?", req.Uni).First(&winner).Error; ferr == nil {
			return &winner, nil
		}
		return nil, apperrors.Internal("failed to create user", err)
	}

	s.log.Infow("user created", "uni", user.Uni, "id", user.ID)
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}
	return &user, nil
}

func (s *UserService) GetByUni(uni string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("uni = ?", uni).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}
	return &user, nil
}

func (s *UserService) Update(id uint, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("failed to update user", err)
	}
	return user, nil
}

// Delete removes a user and cascades their participations.
func (s *UserService) Delete(id uint) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(user).Error; err != nil {
		return apperrors.Internal("failed to delete user", err)
	}
	return nil
}

func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to list users", err)
	}
	return users, nil
}

// Search matches name or uni case-insensitively. Queries shorter than
// two characters and internal failures both return an empty slice.
func (s *UserService) Search(query string) []models.User {
	query = trimmedQuery(query)
	if query == "" {
		return []models.User{}
	}

	var users []models.User
	pattern := "%" + query + "%"
	err := s.db.
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(uni) LIKE LOWER(?)", pattern, pattern).
		Limit(50).
		Find(&users).Error
	if err != nil {
		s.log.Errorw("user search failed", "query", query, "error", err)
		return []models.User{}
	}
	return users
}
