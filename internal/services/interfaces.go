package services

import (
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// RegisterParams holds the input for user registration. Groups are referred
// to by name and permissions by codename, both optional.
type RegisterParams struct {
	Username    string
	Email       string
	Phone       string
	Password    string
	Groups      []string
	Permissions []string
}

// UpdateUserParams holds optional admin-side updates to a user. Nil fields
// are left untouched.
type UpdateUserParams struct {
	Username    *string
	Email       *string
	Phone       *string
	IsActive    *bool
	IsStaff     *bool
	Groups      *[]string
	Permissions *[]string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(params RegisterParams) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserWithAccess(id string) (*models.User, error)
	UpdateProfile(userID string, phone, profileImage *string) (*models.User, error)
	ListUsers(filter UserFilter, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	ListAllUsers(filter UserFilter) ([]models.User, error)
	UpdateUser(userID string, params UpdateUserParams) (*models.User, error)
	DeleteUser(actorID, userID string) error
	SetPassword(userID, password string) error
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
}

// GroupServicer defines the contract for group administration.
type GroupServicer interface {
	ListGroups(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error)
	CreateGroup(name string, permissionCodenames []string) (*models.Group, error)
	GetGroupByID(groupID string) (*models.Group, error)
	UpdateGroup(groupID string, name *string, permissionCodenames *[]string) (*models.Group, error)
	DeleteGroup(groupID string) (*models.Group, error)
	BulkDeleteGroups(groupIDs []string) (int64, error)
}

// PermissionServicer defines the contract for permission listing and seeding.
type PermissionServicer interface {
	ListPermissions(search string) ([]models.Permission, error)
	EnsureDefaults() error
}

// PasswordResetServicer defines the contract for the password reset flow.
type PasswordResetServicer interface {
	IssueToken(email string) (*models.PasswordResetToken, error)
	ResetPassword(token, newPassword string) error
}

// CategoryServicer defines the contract for category management.
type CategoryServicer interface {
	CreateCategory(userID, name, icon string) (*models.Category, error)
	ListCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, icon *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// UpdateTransactionParams holds optional updates to a transaction. Nil
// fields are left untouched.
type UpdateTransactionParams struct {
	Type       *models.TransactionType
	Amount     *decimal.Decimal
	Date       *time.Time
	CategoryID *string
	Note       *string
}

// TransactionSummary is the Aggregation Engine's output: decimal totals per
// type, their difference, and the size of the filtered set across both types.
type TransactionSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int64           `json:"count"`
}

// TransactionServicer defines the contract for transaction management and
// aggregation.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID string, txType models.TransactionType, amount decimal.Decimal, date time.Time, note string) (*models.Transaction, error)
	ListTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	Summarize(userID string, filter TransactionFilter) (*TransactionSummary, error)
}

// GoalServicer defines the contract for budget goal management.
type GoalServicer interface {
	ListGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetGoal], error)
	UpsertGoal(userID string, month time.Time, targetAmount, goldAmount decimal.Decimal) (*models.BudgetGoal, error)
	GetGoalByID(userID, goalID string) (*models.BudgetGoal, error)
	DeleteGoal(userID, goalID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
