package plaid

import (
	"context"
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"
)

// BankAccount is an account at a linked institution.
type BankAccount struct {
	ID      string
	Name    string
	Subtype string
	Balance decimal.Decimal
}

// BankTransaction is a posted or pending bank transaction. A positive amount is money
// leaving the account.
type BankTransaction struct {
	ID        string
	AccountID string
	Amount    decimal.Decimal
	Name      string
	Merchant  string
	Category  string
	Date      time.Time
	Pending   bool
}

// SyncPage is one page of incremental transaction updates.
type SyncPage struct {
	Added      []BankTransaction
	Modified   []BankTransaction
	Removed    []string
	NextCursor string
	HasMore    bool
}

// Client is the subset of Plaid the server uses.
type Client interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	Institution(ctx context.Context, accessToken string) (id, name string, err error)
	Accounts(ctx context.Context, accessToken string) ([]BankAccount, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (SyncPage, error)
}

// APIClient implements Client against the Plaid API.
type APIClient struct {
	api *plaid.APIClient
}

func NewPlaidClient(clientID, secret, env string) (*APIClient, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid Plaid environment: %s", env)
	}

	return &APIClient{api: plaid.NewAPIClient(configuration)}, nil
}

// API exposes the underlying SDK client for webhook key lookups.
func (c *APIClient) API() *plaid.APIClient {
	return c.api
}

func (c *APIClient) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: clientUserID,
	}
	request := plaid.NewLinkTokenCreateRequest(
		"Wealth",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	resp, _, err := c.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", err
	}
	return resp.GetLinkToken(), nil
}

func (c *APIClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return "", "", err
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (c *APIClient) Institution(ctx context.Context, accessToken string) (string, string, error) {
	req := plaid.NewItemGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.ItemGet(ctx).ItemGetRequest(*req).Execute()
	if err != nil {
		return "", "", err
	}
	item := resp.GetItem()
	name, _ := item.AdditionalProperties["institution_name"].(string)
	return item.GetInstitutionId(), name, nil
}

func (c *APIClient) Accounts(ctx context.Context, accessToken string) ([]BankAccount, error) {
	req := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, err
	}

	var accounts []BankAccount
	for _, acc := range resp.GetAccounts() {
		balances := acc.GetBalances()
		accounts = append(accounts, BankAccount{
			ID:      acc.GetAccountId(),
			Name:    acc.GetName(),
			Subtype: string(acc.GetSubtype()),
			Balance: decimal.NewFromFloat(balances.GetCurrent()).Round(2),
		})
	}
	return accounts, nil
}

func (c *APIClient) SyncTransactions(ctx context.Context, accessToken, cursor string) (SyncPage, error) {
	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != "" {
		request.SetCursor(cursor)
	}
	resp, _, err := c.api.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return SyncPage{}, err
	}

	page := SyncPage{NextCursor: resp.GetNextCursor(), HasMore: resp.GetHasMore()}
	for _, t := range resp.GetAdded() {
		page.Added = append(page.Added, convertTransaction(t))
	}
	for _, t := range resp.GetModified() {
		page.Modified = append(page.Modified, convertTransaction(t))
	}
	for _, t := range resp.GetRemoved() {
		page.Removed = append(page.Removed, t.GetTransactionId())
	}
	return page, nil
}

func convertTransaction(t plaid.Transaction) BankTransaction {
	date, err := time.Parse("2006-01-02", t.GetDate())
	if err != nil {
		date = time.Now()
	}
	pfc := t.GetPersonalFinanceCategory()
	return BankTransaction{
		ID:        t.GetTransactionId(),
		AccountID: t.GetAccountId(),
		Amount:    decimal.NewFromFloat(t.GetAmount()).Round(2),
		Name:      t.GetName(),
		Merchant:  t.GetMerchantName(),
		Category:  pfc.GetPrimary(),
		Date:      date,
		Pending:   t.GetPending(),
	}
}
