package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// DateLayout is the wire format for calendar dates in query parameters.
const DateLayout = "2006-01-02"

// invalidFilter builds a validation error naming the offending parameter.
func invalidFilter(field, value string) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInvalidFilter,
		fmt.Sprintf("Invalid %s: %q", field, value))
}

// TransactionFilterParams carries the raw, optional query-string parameters
// of the transaction list, summary, and export endpoints. Empty string means
// the parameter is absent and imposes no constraint.
type TransactionFilterParams struct {
	Type     string `form:"type"`
	Category string `form:"category"`
	Min      string `form:"min"`
	Max      string `form:"max"`
	From     string `form:"from"`
	To       string `form:"to"`
	Search   string `form:"search"`
}

// TransactionFilter is the typed, validated predicate set built from
// TransactionFilterParams. It is side-effect free: Apply composes WHERE
// clauses onto a query without executing it, so the same filter value can
// feed the list, count, and summary consumers and all three see the same
// row set.
type TransactionFilter struct {
	Type       *models.TransactionType
	CategoryID string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	FromDate   *time.Time
	ToDate     *time.Time
	Search     string
}

// ParseTransactionFilter validates the raw parameters and produces a
// TransactionFilter. Every malformed value is rejected with a validation
// error naming the parameter; nothing fails open. "type=all" and empty
// strings are treated as absent. Unknown category ids are not an error:
// they simply match nothing.
func ParseTransactionFilter(p TransactionFilterParams) (TransactionFilter, error) {
	var f TransactionFilter

	switch p.Type {
	case "", "all":
	case string(models.TransactionTypeIncome), string(models.TransactionTypeExpense):
		t := models.TransactionType(p.Type)
		f.Type = &t
	default:
		return f, invalidFilter("type", p.Type)
	}

	f.CategoryID = p.Category

	if p.Min != "" {
		min, err := decimal.NewFromString(p.Min)
		if err != nil {
			return f, invalidFilter("min", p.Min)
		}
		f.MinAmount = &min
	}
	if p.Max != "" {
		max, err := decimal.NewFromString(p.Max)
		if err != nil {
			return f, invalidFilter("max", p.Max)
		}
		f.MaxAmount = &max
	}

	if p.From != "" {
		from, err := time.Parse(DateLayout, p.From)
		if err != nil {
			return f, invalidFilter("from", p.From)
		}
		f.FromDate = &from
	}
	if p.To != "" {
		to, err := time.Parse(DateLayout, p.To)
		if err != nil {
			return f, invalidFilter("to", p.To)
		}
		f.ToDate = &to
	}

	f.Search = strings.TrimSpace(p.Search)
	return f, nil
}

// Apply composes the filter's predicates onto q. The search predicate is a
// single OR over note and category name; it combines with every other active
// filter by AND.
func (f TransactionFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.Type != nil {
		q = q.Where("transactions.type = ?", *f.Type)
	}
	if f.CategoryID != "" {
		q = q.Where("transactions.category_id = ?", f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("transactions.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("transactions.amount <= ?", *f.MaxAmount)
	}
	if f.FromDate != nil {
		q = q.Where("transactions.date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transactions.date <= ?", *f.ToDate)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(transactions.note) LIKE ? OR EXISTS (SELECT 1 FROM categories WHERE categories.id = transactions.category_id AND LOWER(categories.name) LIKE ?)",
			needle, needle,
		)
	}
	return q
}

// userOrderFields is the allow-list of user list ordering fields, mapped to
// their column names. Anything outside it is a client error, never a
// silently ignored parameter.
var userOrderFields = map[string]string{
	"username":   "username",
	"email":      "email",
	"phone":      "phone",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"last_login": "last_login_at",
}

// UserFilterParams carries the raw query-string parameters of the user list
// and export endpoints.
type UserFilterParams struct {
	Search    string `form:"search"`
	Username  string `form:"username"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	Group     string `form:"group"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Ordering  string `form:"ordering"`
}

// UserFilter is the typed predicate set over the user collection.
type UserFilter struct {
	Search      string
	Username    string
	Email       string
	Phone       string
	Group       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderClause string
}

// ParseUserFilter validates the raw parameters. start_date and end_date are
// calendar dates expanded to the start-of-day / end-of-day instant in loc
// (the boundary timezone) before being compared against created_at.
// Malformed dates and ordering fields outside the allow-list are rejected
// with an error naming the value.
func ParseUserFilter(p UserFilterParams, loc *time.Location) (UserFilter, error) {
	f := UserFilter{
		Search:   strings.TrimSpace(p.Search),
		Username: strings.TrimSpace(p.Username),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
		Group:    strings.TrimSpace(p.Group),
	}

	if p.StartDate != "" {
		d, err := time.Parse(DateLayout, p.StartDate)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidFilter, "Invalid start_date. Use YYYY-MM-DD")
		}
		from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		f.CreatedFrom = &from
	}
	if p.EndDate != "" {
		d, err := time.Parse(DateLayout, p.EndDate)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidFilter, "Invalid end_date. Use YYYY-MM-DD")
		}
		to := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
		f.CreatedTo = &to
	}

	ordering := strings.TrimSpace(p.Ordering)
	if ordering == "" {
		f.OrderClause = "created_at DESC"
	} else {
		desc := strings.HasPrefix(ordering, "-")
		key := strings.TrimPrefix(ordering, "-")
		column, ok := userOrderFields[key]
		if !ok {
			return f, apperrors.WithMessage(apperrors.ErrInvalidFilter,
				fmt.Sprintf("Invalid ordering field: %s", key))
		}
		if desc {
			f.OrderClause = column + " DESC"
		} else {
			f.OrderClause = column + " ASC"
		}
	}

	return f, nil
}

// groupNameExists is an EXISTS predicate over a user's group memberships.
// Using EXISTS instead of a JOIN keeps the row set free of duplicates, so
// no DISTINCT is needed for counting.
const groupNameExists = "EXISTS (SELECT 1 FROM user_groups ug JOIN groups g ON g.id = ug.group_id WHERE ug.user_id = users.id AND LOWER(g.name) LIKE ?)"

// Apply composes the filter's predicates onto q. Ordering is left to the
// terminal consumer (count queries have no use for it); OrderClause is built
// exclusively from the allow-list, never from raw client input.
func (f UserFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.phone) LIKE ? OR "+groupNameExists,
			needle, needle, needle, needle,
		)
	}
	if f.Username != "" {
		q = q.Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(f.Username)+"%")
	}
	if f.Email != "" {
		q = q.Where("LOWER(users.email) LIKE ?", "%"+strings.ToLower(f.Email)+"%")
	}
	if f.Phone != "" {
		q = q.Where("LOWER(users.phone) LIKE ?", "%"+strings.ToLower(f.Phone)+"%")
	}
	if f.Group != "" {
		q = q.Where(groupNameExists, "%"+strings.ToLower(f.Group)+"%")
	}
	if f.CreatedFrom != nil {
		q = q.Where("users.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("users.created_at <= ?", *f.CreatedTo)
	}
	return q
}
