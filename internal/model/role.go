package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, CASHIER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleCashier = "CASHIER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full back-office access: catalog, purchasing, stock opname, reports and users",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Point of sale access",
	},
}

// CashierPrivileges is the subset of DefaultPrivileges granted to CASHIER.
// ADMIN receives every privilege.
var CashierPrivileges = []string{
	"product:view",
	"sale:create",
	"sale:view",
	"stock:view",
	"dashboard:view",
}
