package repository

import (
	"context"
	"errors"

	"pos-inventory/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates ADMIN and CASHIER when missing and resets their
// privilege sets. Privileges must already be seeded.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []model.Privilege
		if err := tx.Find(&all).Error; err != nil {
			return err
		}

		var cashier []model.Privilege
		if err := tx.Where("code IN ?", model.CashierPrivileges).Find(&cashier).Error; err != nil {
			return err
		}

		for _, defaultRole := range model.DefaultRoles {
			var role model.Role
			err := tx.Where("code = ?", defaultRole.Code).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = defaultRole
				if err := tx.Omit("Privileges").Create(&role).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			privileges := cashier
			if role.Code == model.RoleAdmin {
				privileges = all
			}
			if err := tx.Model(&role).Association("Privileges").Replace(privileges); err != nil {
				return err
			}
		}
		return nil
	})
}
