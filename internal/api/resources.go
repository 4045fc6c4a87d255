package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"finsight/internal/core"
)

const (
	pathLogin       = "/auth/login"
	pathAccount     = "/account"
	pathCategory    = "/category"
	pathTransaction = "/transaction"

	pathTopRisky        = "/analytics/top-risky-accounts"
	pathMonthly         = "/analytics/monthly-expense-summary"
	pathCategorySummary = "/analytics/category-summary"
)

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds core.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.Post(ctx, pathLogin, creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return out.Token, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	var out []core.Account
	if err := c.Get(ctx, pathAccount, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, in core.AccountInput) error {
	return c.Post(ctx, pathAccount, in, nil)
}

func (c *Client) UpdateAccount(ctx context.Context, id int64, in core.AccountInput) error {
	return c.Put(ctx, itemPath(pathAccount, id), in, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return c.Delete(ctx, itemPath(pathAccount, id))
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := c.Get(ctx, pathCategory, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in core.CategoryInput) error {
	return c.Post(ctx, pathCategory, in, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in core.CategoryInput) error {
	return c.Put(ctx, itemPath(pathCategory, id), in, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.Delete(ctx, itemPath(pathCategory, id))
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.Get(ctx, pathTransaction, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) error {
	return c.Post(ctx, pathTransaction, in, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.Delete(ctx, itemPath(pathTransaction, id))
}

// TopRiskyAccounts returns the count highest risk accounts, as ranked by the backend.
func (c *Client) TopRiskyAccounts(ctx context.Context, count int) ([]core.TopRiskyAccount, error) {
	q := url.Values{"count": {strconv.Itoa(count)}}
	var out []core.TopRiskyAccount
	if err := c.Get(ctx, pathTopRisky+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MonthlyExpenseSummary(ctx context.Context) ([]core.MonthlySummary, error) {
	var out []core.MonthlySummary
	if err := c.Get(ctx, pathMonthly, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CategorySummary(ctx context.Context) ([]core.CategorySummary, error) {
	var out []core.CategorySummary
	if err := c.Get(ctx, pathCategorySummary, &out); err != nil {
		return nil, err
	}
	return out, nil
}
