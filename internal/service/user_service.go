package service

import (
	"context"
	"errors"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmailExists = apperror.Conflict("email already exists")

type UserService interface {
	CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, userID uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error
	GetAllUsers(ctx context.Context, actor Actor) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, actor Actor, id uuid.UUID) (*model.UserResponse, error)
	GetRoles(ctx context.Context, actor Actor) ([]model.Role, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,min=3"`
	Role     string `json:"role" validate:"required,oneof=ADMIN CASHIER"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required,min=3"`
	Role     string  `json:"role" validate:"required,oneof=ADMIN CASHIER"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*model.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.FromDB(err, "user")
	}

	role, err := s.roleRepo.FindByCode(ctx, req.Role)
	if err != nil {
		return nil, apperror.FromDB(err, "role")
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	user.CreatedBy = actor.Label()
	user.UpdatedBy = actor.Label()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		err = apperror.FromDB(err, "user")
		logInternal("user", "CreateUser", "create user", req.Email, err)
		return nil, err
	}

	user.Role = role
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, userID uuid.UUID, req UpdateUserRequest) (*model.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}

	if req.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
			return nil, ErrEmailExists
		}
	}

	role, err := s.roleRepo.FindByCode(ctx, req.Role)
	if err != nil {
		return nil, apperror.FromDB(err, "role")
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.Label()

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		err = apperror.FromDB(err, "user")
		logInternal("user", "UpdateUser", "update user", userID, err)
		return nil, err
	}

	return s.GetUserByID(ctx, actor, userID)
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperror.Validation("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.Wrap(apperror.KindReferential, "user has recorded sales, deactivate the account instead", err)
		}
		err = apperror.FromDB(err, "user")
		logInternal("user", "DeleteUser", "delete user", userID, err)
		return err
	}
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context, actor Actor) ([]model.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "user")
		logInternal("user", "GetAllUsers", "list users", nil, err)
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, actor Actor, id uuid.UUID) (*model.UserResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetRoles(ctx context.Context, actor Actor) ([]model.Role, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "role")
		logInternal("user", "GetRoles", "list roles", nil, err)
		return nil, err
	}
	return roles, nil
}
