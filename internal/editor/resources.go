package editor

import (
	"context"

	"finsight/internal/core"
)

const (
	ResourceAccounts     = "accounts"
	ResourceCategories   = "categories"
	ResourceTransactions = "transactions"
)

// AccountsAPI is the slice of the backend client used by the accounts page.
type AccountsAPI interface {
	ListAccounts(ctx context.Context) ([]core.Account, error)
	CreateAccount(ctx context.Context, in core.AccountInput) error
	UpdateAccount(ctx context.Context, id int64, in core.AccountInput) error
	DeleteAccount(ctx context.Context, id int64) error
}

type CategoriesAPI interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, in core.CategoryInput) error
	UpdateCategory(ctx context.Context, id int64, in core.CategoryInput) error
	DeleteCategory(ctx context.Context, id int64) error
}

// TransactionsAPI has no update call: transactions are create and delete only.
type TransactionsAPI interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// AccountsPage is any logged-in user's page; fetch failures are notified.
var AccountsPage = Config{
	Gate:           AnyToken,
	OnFetchFailure: NotifyOnFailure,
	Messages: Messages{
		FetchFailed:  "Failed to fetch accounts",
		Created:      "Account added",
		Updated:      "Account updated",
		SaveFailed:   "Operation failed",
		Deleted:      "Account deleted",
		DeleteFailed: "Delete failed",
	},
}

var CategoriesPage = Config{
	Gate:           AdminRole,
	OnFetchFailure: LogOnFailure,
	Messages: Messages{
		Created:      "Category created successfully",
		Updated:      "Category updated successfully",
		SaveFailed:   "Something went wrong",
		Deleted:      "Category deleted",
		DeleteFailed: "Failed to delete",
	},
}

var TransactionsPage = Config{
	Gate:           AdminRole,
	OnFetchFailure: LogOnFailure,
	Messages: Messages{
		Created:      "Transaction added",
		SaveFailed:   "Failed to add transaction",
		Deleted:      "Transaction deleted",
		DeleteFailed: "Failed to delete",
	},
}

type Accounts struct{ API AccountsAPI }

func (Accounts) Name() string { return ResourceAccounts }

func (r Accounts) List(ctx context.Context) ([]core.Account, error) {
	return r.API.ListAccounts(ctx)
}

func (r Accounts) Create(ctx context.Context, in core.AccountInput) error {
	return r.API.CreateAccount(ctx, in)
}

func (r Accounts) Update(ctx context.Context, id int64, in core.AccountInput) error {
	return r.API.UpdateAccount(ctx, id, in)
}

func (r Accounts) Delete(ctx context.Context, id int64) error {
	return r.API.DeleteAccount(ctx, id)
}

func (Accounts) ID(a core.Account) int64                 { return a.ID }
func (Accounts) FormOf(a core.Account) core.AccountInput { return a.Input() }
func (Accounts) Blank() core.AccountInput                { return core.AccountInput{} }

type Categories struct{ API CategoriesAPI }

func (Categories) Name() string { return ResourceCategories }

func (r Categories) List(ctx context.Context) ([]core.Category, error) {
	return r.API.ListCategories(ctx)
}

func (r Categories) Create(ctx context.Context, in core.CategoryInput) error {
	return r.API.CreateCategory(ctx, in)
}

func (r Categories) Update(ctx context.Context, id int64, in core.CategoryInput) error {
	return r.API.UpdateCategory(ctx, id, in)
}

func (r Categories) Delete(ctx context.Context, id int64) error {
	return r.API.DeleteCategory(ctx, id)
}

func (Categories) ID(c core.Category) int64                  { return c.ID }
func (Categories) FormOf(c core.Category) core.CategoryInput { return c.Input() }

// Blank defaults the type selector to Credit.
func (Categories) Blank() core.CategoryInput { return core.CategoryInput{Type: core.Credit} }

// Transactions deliberately lacks Update.
type Transactions struct{ API TransactionsAPI }

func (Transactions) Name() string { return ResourceTransactions }

func (r Transactions) List(ctx context.Context) ([]core.Transaction, error) {
	return r.API.ListTransactions(ctx)
}

func (r Transactions) Create(ctx context.Context, in core.TransactionInput) error {
	return r.API.CreateTransaction(ctx, in)
}

func (r Transactions) Delete(ctx context.Context, id int64) error {
	return r.API.DeleteTransaction(ctx, id)
}

func (Transactions) ID(t core.Transaction) int64 { return t.ID }

func (Transactions) FormOf(t core.Transaction) core.TransactionInput {
	return core.TransactionInput{
		AccountID:  t.AccountID,
		CategoryID: t.CategoryID,
		Amount:     t.Amount,
		Date:       t.Date,
		Type:       t.Type,
	}
}

// Blank starts a transaction dated today as a Debit.
func (Transactions) Blank() core.TransactionInput {
	return core.TransactionInput{Date: core.Today(), Type: core.Debit}
}

// TransactionLists are the lookup lists shown next to the transactions.
type TransactionLists struct {
	Accounts   []core.Account
	Categories []core.Category
}

// Fetches loads the lookup lists together with the transactions.
func (l *TransactionLists) Fetches(api TransactionsAPI) []Fetch {
	return []Fetch{
		Into(&l.Accounts, api.ListAccounts),
		Into(&l.Categories, api.ListCategories),
	}
}
