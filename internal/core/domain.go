package core

import (
	"errors"
	"strings"
)

const (
	Credit EntryType = "Credit"
	Debit  EntryType = "Debit"
)

// RoleAdmin is the role claim value that unlocks admin-gated controls.
const RoleAdmin = "Admin"

type (
	// EntryType is the closed Credit/Debit enumeration used by categories
	// and transactions.
	EntryType string

	Account struct {
		ID            int64   `json:"id"`
		AccountNumber string  `json:"accountNumber"`
		Name          string  `json:"name"`
		RiskScore     float64 `json:"riskScore"`
	}

	// AccountInput is the create/update payload for an account.
	AccountInput struct {
		AccountNumber string  `json:"accountNumber"`
		Name          string  `json:"name"`
		RiskScore     float64 `json:"riskScore"`
	}

	Category struct {
		ID   int64     `json:"id"`
		Name string    `json:"name"`
		Type EntryType `json:"type"`
	}

	CategoryInput struct {
		Name string    `json:"name"`
		Type EntryType `json:"type"`
	}

	Transaction struct {
		ID         int64     `json:"id"`
		AccountID  int64     `json:"accountId"`
		CategoryID int64     `json:"categoryId"`
		Amount     float64   `json:"amount"`
		Date       string    `json:"date"`
		Type       EntryType `json:"type"`
	}

	// TransactionInput is the create payload for a transaction. There is no
	// update path for transactions.
	TransactionInput struct {
		AccountID  int64     `json:"accountId"`
		CategoryID int64     `json:"categoryId"`
		Amount     float64   `json:"amount"`
		Date       string    `json:"date"`
		Type       EntryType `json:"type"`
	}

	Credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

var ErrInvalidEntryType = errors.New("invalid entry type")

// EntryTypes lists the selectable values in display order.
func EntryTypes() []EntryType {
	return []EntryType{Credit, Debit}
}

func (t EntryType) Validate() error {
	switch t {
	case Credit, Debit:
		return nil
	}
	return ErrInvalidEntryType
}

// ParseEntryType maps a submitted selector value onto the enumeration,
// falling back to def for anything outside it.
func ParseEntryType(s string, def EntryType) EntryType {
	t := EntryType(strings.TrimSpace(s))
	if t.Validate() != nil {
		return def
	}
	return t
}

// Input returns the editable projection of the account.
func (a Account) Input() AccountInput {
	return AccountInput{AccountNumber: a.AccountNumber, Name: a.Name, RiskScore: a.RiskScore}
}

func (c Category) Input() CategoryInput {
	return CategoryInput{Name: c.Name, Type: c.Type}
}
