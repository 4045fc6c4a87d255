package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finsight/internal/core"
	"finsight/internal/notify"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend keeps records in memory and counts calls.
type fakeBackend struct {
	mu sync.Mutex

	accounts     []core.Account
	categories   []core.Category
	transactions []core.Transaction
	nextID       int64

	calls map[string]int
	fail  map[string]bool

	createdTx []core.TransactionInput
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, calls: map[string]int{}, fail: map[string]bool{}}
}

func (f *fakeBackend) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.fail[name] {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListAccounts(context.Context) ([]core.Account, error) {
	if err := f.hit("ListAccounts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Account(nil), f.accounts...), nil
}

func (f *fakeBackend) CreateAccount(_ context.Context, in core.AccountInput) error {
	if err := f.hit("CreateAccount"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.accounts = append(f.accounts, core.Account{ID: f.nextID, AccountNumber: in.AccountNumber, Name: in.Name, RiskScore: in.RiskScore})
	return nil
}

func (f *fakeBackend) UpdateAccount(_ context.Context, id int64, in core.AccountInput) error {
	if err := f.hit("UpdateAccount"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts[i] = core.Account{ID: id, AccountNumber: in.AccountNumber, Name: in.Name, RiskScore: in.RiskScore}
		}
	}
	return nil
}

func (f *fakeBackend) DeleteAccount(_ context.Context, id int64) error {
	if err := f.hit("DeleteAccount"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListCategories(context.Context) ([]core.Category, error) {
	if err := f.hit("ListCategories"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeBackend) CreateCategory(_ context.Context, in core.CategoryInput) error {
	if err := f.hit("CreateCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.categories = append(f.categories, core.Category{ID: f.nextID, Name: in.Name, Type: in.Type})
	return nil
}

func (f *fakeBackend) UpdateCategory(_ context.Context, id int64, in core.CategoryInput) error {
	if err := f.hit("UpdateCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i] = core.Category{ID: id, Name: in.Name, Type: in.Type}
		}
	}
	return nil
}

func (f *fakeBackend) DeleteCategory(_ context.Context, id int64) error {
	if err := f.hit("DeleteCategory"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListTransactions(context.Context) ([]core.Transaction, error) {
	if err := f.hit("ListTransactions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Transaction(nil), f.transactions...), nil
}

func (f *fakeBackend) CreateTransaction(_ context.Context, in core.TransactionInput) error {
	if err := f.hit("CreateTransaction"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdTx = append(f.createdTx, in)
	f.nextID++
	f.transactions = append(f.transactions, core.Transaction{
		ID: f.nextID, AccountID: in.AccountID, CategoryID: in.CategoryID,
		Amount: in.Amount, Date: in.Date, Type: in.Type,
	})
	return nil
}

func (f *fakeBackend) DeleteTransaction(_ context.Context, id int64) error {
	if err := f.hit("DeleteTransaction"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.transactions {
		if f.transactions[i].ID == id {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			break
		}
	}
	return nil
}

type sent struct {
	message  string
	severity notify.Severity
}

type recordingSink struct{ got []sent }

func (s *recordingSink) Notify(_ context.Context, message string, severity notify.Severity) {
	s.got = append(s.got, sent{message, severity})
}

func (s *recordingSink) last() sent {
	if len(s.got) == 0 {
		return sent{}
	}
	return s.got[len(s.got)-1]
}

type principal struct{ token, admin bool }

func (p principal) HasToken() bool { return p.token }
func (p principal) IsAdmin() bool  { return p.admin }

var (
	guest     = principal{}
	plainUser = principal{token: true}
	admin     = principal{token: true, admin: true}
)

type recordingPublisher struct{ got []Activity }

func (p *recordingPublisher) Publish(_ context.Context, a Activity) error {
	p.got = append(p.got, a)
	return nil
}

func TestLoad_Accounts(t *testing.T) {
	be := newFakeBackend()
	be.accounts = []core.Account{{ID: 1, AccountNumber: "A-1", Name: "Main", RiskScore: 0.42}}
	sink := &recordingSink{}

	ed := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, guest, sink)
	if ed.Phase != Loading {
		t.Fatalf("initial phase = %v, want Loading", ed.Phase)
	}
	if err := ed.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ed.Phase != Ready || len(ed.Items) != 1 {
		t.Errorf("after Load phase = %v items = %v", ed.Phase, ed.Items)
	}
	if len(sink.got) != 0 {
		t.Errorf("unexpected notifications: %v", sink.got)
	}
}

func TestLoad_FailurePolicyPerPage(t *testing.T) {
	ctx := context.Background()

	t.Run("accounts notify", func(t *testing.T) {
		be := newFakeBackend()
		be.fail["ListAccounts"] = true
		sink := &recordingSink{}
		ed := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, guest, sink)

		if err := ed.Load(ctx); !errors.Is(err, errBackend) {
			t.Fatalf("Load() error = %v, want %v", err, errBackend)
		}
		if ed.Phase != Ready || ed.Items != nil {
			t.Errorf("phase = %v items = %v, want Ready and empty", ed.Phase, ed.Items)
		}
		want := sent{"Failed to fetch accounts", notify.Error}
		if len(sink.got) != 1 || sink.got[0] != want {
			t.Errorf("notifications = %v, want [%v]", sink.got, want)
		}
	})

	t.Run("categories log only", func(t *testing.T) {
		be := newFakeBackend()
		be.fail["ListCategories"] = true
		sink := &recordingSink{}
		ed := New[core.Category, core.CategoryInput](Categories{be}, CategoriesPage, admin, sink)

		_ = ed.Load(ctx)
		if ed.Phase != Ready {
			t.Errorf("phase = %v, want Ready", ed.Phase)
		}
		if len(sink.got) != 0 {
			t.Errorf("notifications = %v, want none", sink.got)
		}
	})

	t.Run("transactions all or nothing", func(t *testing.T) {
		be := newFakeBackend()
		be.transactions = []core.Transaction{{ID: 1}}
		be.accounts = []core.Account{{ID: 2}}
		be.fail["ListCategories"] = true
		sink := &recordingSink{}
		var lists TransactionLists
		ed := New[core.Transaction, core.TransactionInput](Transactions{be}, TransactionsPage, admin, sink,
			WithFetches[core.Transaction, core.TransactionInput](lists.Fetches(be)...))

		_ = ed.Load(ctx)
		if ed.Items != nil || lists.Accounts != nil {
			t.Errorf("partial results committed: items=%v accounts=%v", ed.Items, lists.Accounts)
		}
		if len(sink.got) != 0 {
			t.Errorf("notifications = %v, want none", sink.got)
		}
	})
}

func TestLoad_CancelledContextDropsResults(t *testing.T) {
	be := newFakeBackend()
	be.accounts = []core.Account{{ID: 1}}
	sink := &recordingSink{}
	ed := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, guest, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ed.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
	if ed.Phase != Loading || ed.Items != nil {
		t.Errorf("phase = %v items = %v, want untouched", ed.Phase, ed.Items)
	}
	if len(sink.got) != 0 {
		t.Errorf("notifications = %v, want none", sink.got)
	}
}

func TestSubmit_RefetchesAfterMutation(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	be.accounts = []core.Account{{ID: 1, AccountNumber: "A-1", Name: "Main", RiskScore: 0.1}}
	sink := &recordingSink{}
	pub := &recordingPublisher{}
	ed := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, plainUser, sink,
		WithPublisher[core.Account, core.AccountInput](pub))
	_ = ed.Load(ctx)

	// Another writer changes the backend between load and submit.
	be.accounts = append(be.accounts, core.Account{ID: 2, Name: "Elsewhere"})

	ed.OpenCreate()
	if err := ed.Submit(ctx, 0, core.AccountInput{AccountNumber: "A-3", Name: "New", RiskScore: 0.5}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(ed.Items) != len(be.accounts) {
		t.Fatalf("items = %v, want backend state %v", ed.Items, be.accounts)
	}
	for i := range ed.Items {
		if ed.Items[i] != be.accounts[i] {
			t.Errorf("item[%d] = %+v, want %+v", i, ed.Items[i], be.accounts[i])
		}
	}
	if ed.Modal.Open() {
		t.Errorf("modal still open: %+v", ed.Modal)
	}
	if ed.Form != (core.AccountInput{}) {
		t.Errorf("form not cleared: %+v", ed.Form)
	}
	if got := sink.last(); got != (sent{"Account added", notify.Success}) {
		t.Errorf("notification = %v", got)
	}
	if len(pub.got) != 1 || pub.got[0].Action != ActionCreated || pub.got[0].Resource != ResourceAccounts {
		t.Errorf("activity = %+v", pub.got)
	}
}

func TestOpenEdit_PrefillsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	original := core.Category{ID: 7, Name: "Groceries", Type: core.Debit}
	be.categories = []core.Category{{ID: 6, Name: "Salary", Type: core.Credit}, original}
	sink := &recordingSink{}
	ed := New[core.Category, core.CategoryInput](Categories{be}, CategoriesPage, admin, sink)
	_ = ed.Load(ctx)

	if !ed.OpenEdit(7) {
		t.Fatal("OpenEdit(7) = false")
	}
	if ed.Modal != (Modal{Kind: ModalEditing, EditID: 7}) {
		t.Errorf("modal = %+v", ed.Modal)
	}
	if ed.Form != original.Input() {
		t.Errorf("form = %+v, want %+v", ed.Form, original.Input())
	}

	if err := ed.Submit(ctx, ed.Modal.EditID, ed.Form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if be.count("UpdateCategory") != 1 || be.count("CreateCategory") != 0 {
		t.Errorf("calls = %v, want one update", be.calls)
	}
	if be.categories[1] != original {
		t.Errorf("record = %+v, want unchanged %+v", be.categories[1], original)
	}
	if got := sink.last(); got != (sent{"Category updated successfully", notify.Success}) {
		t.Errorf("notification = %v", got)
	}
}

func TestOpenEdit_UnknownRowOrNoEditPath(t *testing.T) {
	be := newFakeBackend()
	be.transactions = []core.Transaction{{ID: 1}}
	be.accounts = []core.Account{{ID: 1}}

	accounts := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, plainUser, nil)
	_ = accounts.Load(context.Background())
	if accounts.OpenEdit(99) || accounts.Modal.Open() {
		t.Errorf("OpenEdit on unknown id opened modal %+v", accounts.Modal)
	}

	txs := New[core.Transaction, core.TransactionInput](Transactions{be}, TransactionsPage, admin, nil)
	_ = txs.Load(context.Background())
	if txs.OpenEdit(1) {
		t.Error("transactions should have no edit path")
	}
	if txs.Editable() {
		t.Error("transactions should not be editable")
	}
	if err := txs.Submit(context.Background(), 1, core.TransactionInput{}); !errors.Is(err, ErrNoEditPath) {
		t.Errorf("Submit with edit id error = %v, want ErrNoEditPath", err)
	}
}

func TestSubmit_FailureKeepsModal(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	be.fail["CreateTransaction"] = true
	sink := &recordingSink{}
	ed := New[core.Transaction, core.TransactionInput](Transactions{be}, TransactionsPage, admin, sink)

	form := core.TransactionInput{AccountID: 1, CategoryID: 2, Amount: 9.99, Date: "2024-05-05", Type: core.Credit}
	ed.OpenCreate()
	if err := ed.Submit(ctx, 0, form); !errors.Is(err, errBackend) {
		t.Fatalf("Submit() error = %v", err)
	}
	if ed.Modal.Kind != ModalCreating {
		t.Errorf("modal = %+v, want Creating", ed.Modal)
	}
	if ed.Form != form {
		t.Errorf("form = %+v, want submitted %+v", ed.Form, form)
	}
	if len(sink.got) != 1 || sink.got[0] != (sent{"Failed to add transaction", notify.Error}) {
		t.Errorf("notifications = %v", sink.got)
	}
}

func TestSubmit_TransactionPayloadAndRefetch(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	sink := &recordingSink{}
	var lists TransactionLists
	ed := New[core.Transaction, core.TransactionInput](Transactions{be}, TransactionsPage, admin, sink,
		WithFetches[core.Transaction, core.TransactionInput](lists.Fetches(be)...))

	form := core.TransactionInput{AccountID: 3, CategoryID: 7, Amount: 150.50, Date: "2024-03-01", Type: core.Debit}
	if err := ed.Submit(ctx, 0, form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(be.createdTx) != 1 || be.createdTx[0] != form {
		t.Errorf("create calls = %+v, want exactly [%+v]", be.createdTx, form)
	}
	for _, name := range []string{"ListTransactions", "ListAccounts", "ListCategories"} {
		if got := be.count(name); got != 1 {
			t.Errorf("%s calls = %d, want 1", name, got)
		}
	}
	if len(ed.Items) != 1 || ed.Items[0].Amount != 150.50 {
		t.Errorf("items = %+v", ed.Items)
	}
	if ed.Form.Amount != 0 || ed.Form.Type != core.Debit {
		t.Errorf("form not reset to blank: %+v", ed.Form)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("success refetches", func(t *testing.T) {
		be := newFakeBackend()
		be.accounts = []core.Account{{ID: 1}, {ID: 2}}
		sink := &recordingSink{}
		ed := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, plainUser, sink)
		_ = ed.Load(ctx)

		if err := ed.Delete(ctx, 1); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(ed.Items) != 1 || ed.Items[0].ID != 2 {
			t.Errorf("items = %+v", ed.Items)
		}
		if got := sink.last(); got != (sent{"Account deleted", notify.Success}) {
			t.Errorf("notification = %v", got)
		}
	})

	t.Run("failure keeps row with one error", func(t *testing.T) {
		be := newFakeBackend()
		be.categories = []core.Category{{ID: 4, Name: "Rent", Type: core.Debit}}
		be.fail["DeleteCategory"] = true
		sink := &recordingSink{}
		ed := New[core.Category, core.CategoryInput](Categories{be}, CategoriesPage, admin, sink)
		_ = ed.Load(ctx)

		if err := ed.Delete(ctx, 4); !errors.Is(err, errBackend) {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(ed.Items) != 1 || ed.Items[0].ID != 4 {
			t.Errorf("row missing after failed delete: %+v", ed.Items)
		}
		if len(sink.got) != 1 || sink.got[0] != (sent{"Failed to delete", notify.Error}) {
			t.Errorf("notifications = %v, want exactly one error", sink.got)
		}
	})
}

func TestGateAsymmetry(t *testing.T) {
	be := newFakeBackend()
	tests := []struct {
		name         string
		who          Principal
		accounts     bool
		categories   bool
		transactions bool
	}{
		{"guest", guest, false, false, false},
		{"user", plainUser, true, false, false},
		{"admin", admin, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := New[core.Account, core.AccountInput](Accounts{be}, AccountsPage, tt.who, nil)
			cat := New[core.Category, core.CategoryInput](Categories{be}, CategoriesPage, tt.who, nil)
			txs := New[core.Transaction, core.TransactionInput](Transactions{be}, TransactionsPage, tt.who, nil)

			if got := acc.Allowed(); got != tt.accounts {
				t.Errorf("accounts allowed = %v, want %v", got, tt.accounts)
			}
			if got := cat.Allowed(); got != tt.categories {
				t.Errorf("categories allowed = %v, want %v", got, tt.categories)
			}
			if got := txs.Allowed(); got != tt.transactions {
				t.Errorf("transactions allowed = %v, want %v", got, tt.transactions)
			}
		})
	}
}

func TestMutations_RefusedWithoutGate(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	be.categories = []core.Category{{ID: 1}}

	ed := New[core.Category, core.CategoryInput](Categories{be}, CategoriesPage, plainUser, nil)
	if err := ed.Submit(ctx, 0, core.CategoryInput{Name: "x", Type: core.Credit}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Submit() error = %v, want ErrForbidden", err)
	}
	if err := ed.Delete(ctx, 1); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete() error = %v, want ErrForbidden", err)
	}
	if be.count("CreateCategory")+be.count("DeleteCategory") != 0 {
		t.Errorf("backend was called: %v", be.calls)
	}
}

func TestLoadDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches with count", func(t *testing.T) {
		api := &fakeAnalytics{}
		d, err := LoadDashboard(ctx, api, 0, nil)
		if err != nil {
			t.Fatalf("LoadDashboard() error = %v", err)
		}
		if api.count != DefaultTopRiskyCount {
			t.Errorf("count = %d, want %d", api.count, DefaultTopRiskyCount)
		}
		if d.Phase != Ready || len(d.TopRisky) != 1 || len(d.Monthly) != 1 || len(d.Categories) != 1 {
			t.Errorf("dashboard = %+v", d)
		}
	})

	t.Run("failure leaves sections empty", func(t *testing.T) {
		api := &fakeAnalytics{failMonthly: true}
		d, err := LoadDashboard(ctx, api, 5, nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if d.Phase != Ready || d.TopRisky != nil || d.Categories != nil {
			t.Errorf("dashboard = %+v", d)
		}
	})
}

type fakeAnalytics struct {
	mu          sync.Mutex
	count       int
	failMonthly bool
}

func (f *fakeAnalytics) TopRiskyAccounts(_ context.Context, count int) ([]core.TopRiskyAccount, error) {
	f.mu.Lock()
	f.count = count
	f.mu.Unlock()
	return []core.TopRiskyAccount{{ID: 1, Name: "Risky", RiskScore: 0.9}}, nil
}

func (f *fakeAnalytics) MonthlyExpenseSummary(context.Context) ([]core.MonthlySummary, error) {
	if f.failMonthly {
		return nil, errBackend
	}
	return []core.MonthlySummary{{Month: "2024-01", Type: "Debit", Total: 10}}, nil
}

func (f *fakeAnalytics) CategorySummary(context.Context) ([]core.CategorySummary, error) {
	return []core.CategorySummary{{Category: "Food", Type: "Debit", Total: 10}}, nil
}
