package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/notify"
	"finsight/internal/session"
)

const (
	pageLogin        = "login"
	pageDashboard    = "dashboard"
	pageAccounts     = "accounts"
	pageCategories   = "categories"
	pageTransactions = "transactions"
)

var pages = []string{pageLogin, pageDashboard, pageAccounts, pageCategories, pageTransactions}

var templateFuncs = template.FuncMap{
	"score":      core.FormatScore,
	"amount":     core.FormatAmount,
	"date":       core.FormatDate,
	"entryTypes": core.EntryTypes,
}

// parseTemplates builds one template set per page, each pairing the shared
// layout with the page's content.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		base, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", page, err)
		}
		t, err := base.ParseFS(fsys, "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// pageData is what the layout renders around every page.
type pageData struct {
	Page         string
	Title        string
	Shell        bool
	LoggedIn     bool
	Path         string
	Notification *notify.Notification
	NotifyMillis int64
	Content      any
}

// render executes the page into a buffer first so a template failure still
// yields a clean 500. The pending notification, if any, is rendered in the
// page and announced with an HX-Trigger header.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, page, title string, content any) {
	t, ok := s.templates[page]
	if !ok {
		InternalServerError("Template not found").Write(w)
		return
	}

	data := pageData{
		Page:         page,
		Title:        title,
		Shell:        page != pageLogin,
		LoggedIn:     sess.HasToken(),
		Path:         r.URL.Path,
		NotifyMillis: s.notifier.TTL().Milliseconds(),
		Content:      content,
	}
	if n, ok := s.notifier.Current(r.Context(), sess.ClientID()); ok {
		data.Notification = &n
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			log.FieldPage, page,
			log.FieldError, err)
		InternalServerError("Failed to render page").Write(w)
		return
	}

	resp := NewHTMXResponse().Status(status).HTML(buf.Bytes())
	if data.Notification != nil {
		resp.TriggerNotification(*data.Notification, s.notifier.TTL())
	}
	resp.Write(w)
}
