package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finsight/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser reads a JSON or form-encoded body once and serves
// string values from whichever it was.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

// Get returns the trimmed, sanitized value of key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody parses the request body, answering 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return nil, false
	}
	return p, true
}

func parseCredentials(p *RequestBodyParser) core.Credentials {
	return core.Credentials{
		Username: p.Get("username"),
		// passwords are sent as typed
		Password: p.rawPassword(),
	}
}

func (p *RequestBodyParser) rawPassword() string {
	if p.jsonData != nil {
		s, _ := p.jsonData["password"].(string)
		return s
	}
	if p.formData != nil {
		return p.formData.Get("password")
	}
	return ""
}

// parseAccountForm reads the account fields; riskScore is not range checked.
func parseAccountForm(p *RequestBodyParser) core.AccountInput {
	return core.AccountInput{
		AccountNumber: p.Get("accountNumber"),
		Name:          p.Get("name"),
		RiskScore:     core.ParseDecimal(p.Get("riskScore")),
	}
}

func parseCategoryForm(p *RequestBodyParser) core.CategoryInput {
	return core.CategoryInput{
		Name: p.Get("name"),
		Type: core.ParseEntryType(p.Get("type"), core.Credit),
	}
}

func parseTransactionForm(p *RequestBodyParser) core.TransactionInput {
	return core.TransactionInput{
		AccountID:  core.ParseID(p.Get("accountId")),
		CategoryID: core.ParseID(p.Get("categoryId")),
		Amount:     core.ParseDecimal(p.Get("amount")),
		Date:       p.Get("date"),
		Type:       core.ParseEntryType(p.Get("type"), core.Debit),
	}
}

// modalRequest is the modal asked for in the query string: ?modal=new
// opens the create form, ?edit=ID the edit form for that row.
type modalRequest struct {
	Create bool
	EditID int64
}

func parseModalRequest(q url.Values) modalRequest {
	if id := core.ParseID(q.Get("edit")); id > 0 {
		return modalRequest{EditID: id}
	}
	return modalRequest{Create: strings.EqualFold(strings.TrimSpace(q.Get("modal")), "new")}
}
