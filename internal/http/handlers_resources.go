package http

import (
	"errors"
	"net/http"

	"finsight/internal/core"
	"finsight/internal/editor"
	"finsight/internal/log"
	"finsight/internal/session"
)

// resourcePage wires one list-editor page to its routes and template.
type resourcePage[T, F any] struct {
	page  string
	title string
	path  string
	build func(s *Server, sess *session.Session, logger *log.Logger) (*editor.Editor[T, F], *editor.TransactionLists)
	parse func(*RequestBodyParser) F
}

// listView is the template content of a list-editor page.
type listView[T, F any] struct {
	Title string
	Path  string
	Ed    *editor.Editor[T, F]
	Lists *editor.TransactionLists
}

var accountsPage = resourcePage[core.Account, core.AccountInput]{
	page:  pageAccounts,
	title: "Accounts",
	path:  "/accounts",
	build: func(s *Server, sess *session.Session, logger *log.Logger) (*editor.Editor[core.Account, core.AccountInput], *editor.TransactionLists) {
		ed := editor.New[core.Account, core.AccountInput](editor.Accounts{API: s.clientFor(sess)}, editor.AccountsPage, sess, s.sinkFor(sess),
			editor.WithPublisher[core.Account, core.AccountInput](s.publisher),
			editor.WithLogger[core.Account, core.AccountInput](logger))
		return ed, nil
	},
	parse: parseAccountForm,
}

var categoriesPage = resourcePage[core.Category, core.CategoryInput]{
	page:  pageCategories,
	title: "Categories",
	path:  "/categories",
	build: func(s *Server, sess *session.Session, logger *log.Logger) (*editor.Editor[core.Category, core.CategoryInput], *editor.TransactionLists) {
		ed := editor.New[core.Category, core.CategoryInput](editor.Categories{API: s.clientFor(sess)}, editor.CategoriesPage, sess, s.sinkFor(sess),
			editor.WithPublisher[core.Category, core.CategoryInput](s.publisher),
			editor.WithLogger[core.Category, core.CategoryInput](logger))
		return ed, nil
	},
	parse: parseCategoryForm,
}

var transactionsPage = resourcePage[core.Transaction, core.TransactionInput]{
	page:  pageTransactions,
	title: "Transactions",
	path:  "/transactions",
	build: func(s *Server, sess *session.Session, logger *log.Logger) (*editor.Editor[core.Transaction, core.TransactionInput], *editor.TransactionLists) {
		client := s.clientFor(sess)
		lists := &editor.TransactionLists{}
		ed := editor.New[core.Transaction, core.TransactionInput](editor.Transactions{API: client}, editor.TransactionsPage, sess, s.sinkFor(sess),
			editor.WithFetches[core.Transaction, core.TransactionInput](lists.Fetches(client)...),
			editor.WithPublisher[core.Transaction, core.TransactionInput](s.publisher),
			editor.WithLogger[core.Transaction, core.TransactionInput](logger))
		return ed, lists
	},
	parse: parseTransactionForm,
}

// servePage loads the list and opens the modal requested in the query, when
// the gate allows it.
func servePage[T, F any](s *Server, w http.ResponseWriter, r *http.Request, p resourcePage[T, F]) {
	ctx := r.Context()
	sess := s.sessionOf(w, r)
	ed, lists := p.build(s, sess, log.FromContext(ctx))

	if err := ed.Load(ctx); err != nil && ctx.Err() != nil {
		return
	}

	switch req := parseModalRequest(r.URL.Query()); {
	case req.EditID > 0 && ed.Editable():
		ed.OpenEdit(req.EditID)
	case req.Create && ed.Allowed():
		ed.OpenCreate()
	}

	s.render(w, r, sess, http.StatusOK, p.page, p.title, listView[T, F]{Title: p.title, Path: p.path, Ed: ed, Lists: lists})
}

// serveSubmit creates a record, or updates the {id} record when update is set.
// Refused mutations never reach the backend.
func serveSubmit[T, F any](s *Server, w http.ResponseWriter, r *http.Request, p resourcePage[T, F], update bool) {
	ctx := r.Context()
	sess := s.sessionOf(w, r)
	ed, lists := p.build(s, sess, log.FromContext(ctx))

	if !ed.Allowed() {
		ForbiddenError("You are not allowed to change " + p.page).Write(w)
		return
	}
	var editID int64
	if update {
		if editID = idParam(r); editID == 0 {
			NotFoundError("Page not found").Write(w)
			return
		}
	}
	body, ok := parseBody(w, r)
	if !ok {
		return
	}

	err := ed.Submit(ctx, editID, p.parse(body))
	switch {
	case errors.Is(err, editor.ErrForbidden):
		ForbiddenError("You are not allowed to change " + p.page).Write(w)
		return
	case errors.Is(err, editor.ErrNoEditPath):
		NotFoundError("Page not found").Write(w)
		return
	case ctx.Err() != nil:
		return
	}

	s.render(w, r, sess, http.StatusOK, p.page, p.title, listView[T, F]{Title: p.title, Path: p.path, Ed: ed, Lists: lists})
}

func serveDelete[T, F any](s *Server, w http.ResponseWriter, r *http.Request, p resourcePage[T, F]) {
	ctx := r.Context()
	sess := s.sessionOf(w, r)
	ed, lists := p.build(s, sess, log.FromContext(ctx))

	if !ed.Allowed() {
		ForbiddenError("You are not allowed to change " + p.page).Write(w)
		return
	}
	id := idParam(r)
	if id == 0 {
		NotFoundError("Page not found").Write(w)
		return
	}

	_ = ed.Delete(ctx, id)
	if ctx.Err() != nil {
		return
	}

	s.render(w, r, sess, http.StatusOK, p.page, p.title, listView[T, F]{Title: p.title, Path: p.path, Ed: ed, Lists: lists})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	servePage(s, w, r, accountsPage)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	serveSubmit(s, w, r, accountsPage, false)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	serveSubmit(s, w, r, accountsPage, true)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	serveDelete(s, w, r, accountsPage)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	servePage(s, w, r, categoriesPage)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	serveSubmit(s, w, r, categoriesPage, false)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	serveSubmit(s, w, r, categoriesPage, true)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	serveDelete(s, w, r, categoriesPage)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	servePage(s, w, r, transactionsPage)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	serveSubmit(s, w, r, transactionsPage, false)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	serveDelete(s, w, r, transactionsPage)
}
