package model

// Privilege represents a permission that can be assigned to roles
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Sale"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "category:manage", Name: "Manage Categories"},
	{Code: "supplier:manage", Name: "Manage Suppliers"},
	{Code: "promotion:manage", Name: "Manage Promotions"},
	// Point of sale
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "sale:view", Name: "View Sale"},
	// Purchasing
	{Code: "purchase:view", Name: "View Purchase Order"},
	{Code: "purchase:create", Name: "Create Purchase Order"},
	{Code: "purchase:receive", Name: "Receive Goods"},
	// Stock
	{Code: "stock:view", Name: "View Stock Movements"},
	{Code: "stock:adjust", Name: "Adjust Stock"},
	// Reporting
	{Code: "report:view", Name: "View Reports"},
	{Code: "dashboard:view", Name: "View Dashboard"},
}
