package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faturas/internal/core"
	"faturas/internal/services"
	"faturas/internal/summary"
)

type fakeImporter struct {
	lastFileName string
	lastMonth    string
	lastTotal    *float64
	lastTxns     []core.Transaction
	err          error
}

func (f *fakeImporter) Import(_ context.Context, fileName, month, monthName string, totalAmount *float64, txns []core.Transaction) (services.ImportResult, error) {
	if f.err != nil {
		return services.ImportResult{}, f.err
	}
	if strings.TrimSpace(fileName) == "" {
		return services.ImportResult{}, core.ErrEmptyFileName
	}
	if len(txns) == 0 {
		return services.ImportResult{}, core.ErrNoTransactions
	}
	f.lastFileName = fileName
	f.lastMonth = month
	f.lastTotal = totalAmount
	f.lastTxns = txns
	return services.ImportResult{StatementID: 7, TotalTransactions: len(txns)}, nil
}

type fakeStatements struct {
	years        []string
	stmts        []summary.StatementRow
	insts        []summary.InstallmentRow
	catRows      []summary.CategoryRow
	transactions map[string][]core.Transaction
	yearsCalls   int
}

func (f *fakeStatements) Years(context.Context) ([]string, error) {
	f.yearsCalls++
	return f.years, nil
}
func (f *fakeStatements) StatementTotals(_ context.Context, _ string) ([]summary.StatementRow, error) {
	return f.stmts, nil
}
func (f *fakeStatements) InstallmentTotals(context.Context, string) ([]summary.InstallmentRow, error) {
	return f.insts, nil
}
func (f *fakeStatements) CategoryTotals(context.Context, string) ([]summary.CategoryRow, error) {
	return f.catRows, nil
}
func (f *fakeStatements) TransactionsForMonth(_ context.Context, month string) ([]core.Transaction, error) {
	return f.transactions[month], nil
}

type fakeCategories struct {
	cats      []core.Category
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeCategories) ListCategories(context.Context) ([]core.Category, error) {
	return f.cats, nil
}
func (f *fakeCategories) CategoryCodes(context.Context) ([]string, error) {
	codes := make([]string, len(f.cats))
	for i, c := range f.cats {
		codes[i] = c.Code
	}
	return codes, nil
}
func (f *fakeCategories) CreateCategory(_ context.Context, name string) (core.Category, error) {
	if f.createErr != nil {
		return core.Category{}, f.createErr
	}
	c := core.Category{ID: 1, Name: name, Code: core.CategoryCode(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return c, nil
}
func (f *fakeCategories) UpdateCategory(_ context.Context, id int64, name string) (core.Category, error) {
	if f.updateErr != nil {
		return core.Category{}, f.updateErr
	}
	return core.Category{ID: id, Name: name, Code: core.CategoryCode(name)}, nil
}
func (f *fakeCategories) DeleteCategory(context.Context, int64) error {
	return f.deleteErr
}

type fakeMappings struct {
	byKey     map[string]core.Mapping
	byID      map[int64]core.Mapping
	updateErr error
}

func (f *fakeMappings) MappingsByStatus(_ context.Context, status core.MappingStatus) ([]core.Mapping, error) {
	var out []core.Mapping
	for _, m := range f.byKey {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}
func (f *fakeMappings) MappingsForKeys(_ context.Context, keys []string) (map[string]core.Mapping, error) {
	out := make(map[string]core.Mapping)
	for _, k := range keys {
		if m, ok := f.byKey[k]; ok {
			out[k] = m
		}
	}
	return out, nil
}
func (f *fakeMappings) MappingByID(_ context.Context, id int64) (core.Mapping, error) {
	m, ok := f.byID[id]
	if !ok {
		return core.Mapping{}, core.ErrNotFound
	}
	return m, nil
}
func (f *fakeMappings) UpdateMappingByID(_ context.Context, id int64, cleanName, category string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	m, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	m.CleanName = cleanName
	m.Category = category
	if strings.TrimSpace(category) != "" {
		m.Status = core.StatusLabeled
	}
	f.byID[id] = m
	f.byKey[m.PlaceKey] = m
	return nil
}
func (f *fakeMappings) UpsertMappingByPlace(_ context.Context, place, cleanName, category string) error {
	key := core.PlaceKey(place)
	m := core.Mapping{ID: int64(len(f.byKey) + 1), PlaceKey: key, CleanName: cleanName, Category: category, Status: core.StatusPending}
	if strings.TrimSpace(category) != "" {
		m.Status = core.StatusLabeled
	}
	f.byKey[key] = m
	return nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

type serverFixture struct {
	server     *Server
	importer   *fakeImporter
	statements *fakeStatements
	categories *fakeCategories
	mappings   *fakeMappings
}

func newTestServer(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		importer: &fakeImporter{},
		statements: &fakeStatements{
			transactions: make(map[string][]core.Transaction),
		},
		categories: &fakeCategories{},
		mappings: &fakeMappings{
			byKey: make(map[string]core.Mapping),
			byID:  make(map[int64]core.Mapping),
		},
	}
	f.server = NewServer(":0", f.importer, f.statements, f.categories, f.mappings, okPinger{})
	t.Cleanup(func() { f.server.Shutdown(context.Background()) })
	return f
}

func (f *serverFixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	f.server.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestImportStatement(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"fileName": "march.csv",
		"month":    "2024-03",
		"transactions": []any{
			map[string]any{"date": "2024-03-05", "place": "Market", "amount": 123.45},
			"not an object",
			map[string]any{"place": "Cafe", "amount": 10, "installments": map[string]any{"current": 1, "total": 3}},
		},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	res := decodeBody[services.ImportResult](t, rec)
	if res.StatementID != 7 || res.TotalTransactions != 2 {
		t.Errorf("result = %+v, want id 7 with 2 transactions", res)
	}
	if len(f.importer.lastTxns) != 2 {
		t.Fatalf("importer received %d transactions, want 2 (non-object dropped)", len(f.importer.lastTxns))
	}
	if f.importer.lastTxns[1].Installments == nil || f.importer.lastTxns[1].Installments.Total != 3 {
		t.Errorf("installments lost in sanitization: %+v", f.importer.lastTxns[1])
	}
}

func TestImportStatementForwardsDeclaredTotal(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"fileName":          "march.csv",
		"month":             "2024-03",
		"totalAmount":       999.99,
		"totalTransactions": 5,
		"transactions": []any{
			map[string]any{"date": "2024-03-05", "place": "Market", "amount": 10},
		},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if f.importer.lastTotal == nil || *f.importer.lastTotal != 999.99 {
		t.Fatalf("declared total forwarded as %v, want 999.99", f.importer.lastTotal)
	}
	// The declared count is advisory: the stored count always matches the
	// transaction list.
	res := decodeBody[services.ImportResult](t, rec)
	if res.TotalTransactions != 1 {
		t.Errorf("TotalTransactions = %d, want 1", res.TotalTransactions)
	}
}

func TestImportStatementWithoutDeclaredTotal(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"fileName":     "march.csv",
		"month":        "2024-03",
		"transactions": []any{map[string]any{"place": "Market", "amount": 10}},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if f.importer.lastTotal != nil {
		t.Errorf("declared total = %v, want nil when absent from the body", *f.importer.lastTotal)
	}
}

func TestImportStatementBadRequests(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"month":        "2024-03",
		"transactions": []any{map[string]any{"amount": 1}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fileName: status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"fileName":     "x.csv",
		"transactions": []any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty transactions: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/statements", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	f.server.Server.Handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec2.Code)
	}
}

func TestImportStatementBodyTooLarge(t *testing.T) {
	f := newTestServer(t)

	padding := strings.Repeat("x", 3<<20)
	body := `{"fileName":"march.csv","month":"2024-03","monthName":"` + padding + `","transactions":[{"amount":1}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/statements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized body: status = %d, want 400", rec.Code)
	}
	if f.importer.lastFileName != "" {
		t.Error("oversized body must not reach the importer")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	f := newTestServer(t)
	f.statements.years = []string{"2024", "2023"}
	f.statements.stmts = []summary.StatementRow{
		{Month: "2024-03", MonthName: "March", Total: 123.456},
		{Month: "", Total: 10},
	}
	f.statements.insts = []summary.InstallmentRow{{Month: "2024-03", Amount: 23.456}}

	rec := f.do(t, http.MethodGet, "/api/statements/summary?year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[summaryResponse](t, rec)

	if resp.SelectedYear != "2024" {
		t.Errorf("selectedYear = %q", resp.SelectedYear)
	}
	if len(resp.Summary) != 13 {
		t.Fatalf("buckets = %d, want 12 + unknown", len(resp.Summary))
	}
	march := resp.Summary[2]
	if march.Month != "2024-03" || march.TotalAmount != 123.46 || march.InstallmentAmount != 23.46 {
		t.Errorf("march bucket = %+v", march)
	}
	last := resp.Summary[12]
	if last.Month != "" || last.MonthName != core.UnknownMonthLabel || last.TotalAmount != 10 {
		t.Errorf("unknown bucket = %+v", last)
	}
}

func TestSummaryFallsBackToMostRecentYear(t *testing.T) {
	f := newTestServer(t)
	f.statements.years = []string{"2024", "2023"}

	rec := f.do(t, http.MethodGet, "/api/statements/summary?year=1999", nil)
	resp := decodeBody[summaryResponse](t, rec)
	if resp.SelectedYear != "2024" {
		t.Errorf("selectedYear = %q, want most recent 2024", resp.SelectedYear)
	}
}

func TestSummaryCachedAndInvalidated(t *testing.T) {
	f := newTestServer(t)
	f.statements.years = []string{"2024"}

	f.do(t, http.MethodGet, "/api/statements/summary?year=2024", nil)
	f.do(t, http.MethodGet, "/api/statements/summary?year=2024", nil)
	if f.statements.yearsCalls != 1 {
		t.Errorf("yearsCalls = %d, want 1 (second request cached)", f.statements.yearsCalls)
	}

	f.do(t, http.MethodPost, "/api/statements", map[string]any{
		"fileName":     "x.csv",
		"transactions": []any{map[string]any{"amount": 1}},
	})
	f.do(t, http.MethodGet, "/api/statements/summary?year=2024", nil)
	if f.statements.yearsCalls != 2 {
		t.Errorf("yearsCalls = %d, want 2 (import purged the cache)", f.statements.yearsCalls)
	}
}

func TestCategorySummaryEndpoint(t *testing.T) {
	f := newTestServer(t)
	f.statements.years = []string{"2024"}
	f.statements.catRows = []summary.CategoryRow{
		{Month: "2024-01", Code: "FOOD", Total: 12.555},
		{Month: "2024-01", Code: "GHOST", Total: 99},
	}
	f.categories.cats = []core.Category{{ID: 1, Name: "Food", Code: "FOOD"}}

	rec := f.do(t, http.MethodGet, "/api/statements/category-summary?year=2024", nil)
	resp := decodeBody[categorySummaryResponse](t, rec)

	if len(resp.Summary) != 12 {
		t.Fatalf("buckets = %d, want 12", len(resp.Summary))
	}
	jan := resp.Summary[0]
	if jan.Totals["FOOD"] != 12.56 {
		t.Errorf("FOOD total = %v, want 12.56", jan.Totals["FOOD"])
	}
	if _, ok := jan.Totals["GHOST"]; ok {
		t.Error("unknown code should be dropped")
	}
}

func TestTransactionsEndpoint(t *testing.T) {
	f := newTestServer(t)
	f.statements.transactions["2024-03"] = []core.Transaction{
		{Date: "2024-03-05", Place: " market 123 ", Category: "misc", Amount: 50},
		{Date: "2024-03-06", Place: "Cafe", Category: "food", Amount: 20},
	}
	f.mappings.byKey["MARKET 123"] = core.Mapping{
		ID: 1, PlaceKey: "MARKET 123", CleanName: "Market", Category: "GROCERIES", Status: core.StatusLabeled,
	}

	rec := f.do(t, http.MethodGet, "/api/statements/transactions?month=2024-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[transactionsResponse](t, rec)

	if resp.MonthName != "March" {
		t.Errorf("monthName = %q, want March", resp.MonthName)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(resp.Transactions))
	}
	first := resp.Transactions[0]
	if first.CleanName != "Market" || first.Category != "GROCERIES" {
		t.Errorf("mapping not resolved: %+v", first)
	}
	second := resp.Transactions[1]
	if second.CleanName != "Cafe" || second.Category != "food" {
		t.Errorf("unmapped transaction altered: %+v", second)
	}
}

func TestTransactionsUnknownMonth(t *testing.T) {
	f := newTestServer(t)
	f.statements.transactions[""] = []core.Transaction{{Place: "Mystery", Amount: 1}}

	rec := f.do(t, http.MethodGet, "/api/statements/transactions?month=unknown", nil)
	resp := decodeBody[transactionsResponse](t, rec)
	if resp.MonthName != core.UnknownMonthLabel {
		t.Errorf("monthName = %q, want Unknown", resp.MonthName)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Place != "Mystery" {
		t.Errorf("transactions = %+v", resp.Transactions)
	}
}

func TestTransactionsMonthValidation(t *testing.T) {
	f := newTestServer(t)

	if rec := f.do(t, http.MethodGet, "/api/statements/transactions", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing month: status = %d, want 400", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/statements/transactions?month=2024-13", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid month: status = %d, want 400", rec.Code)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Alimentação & Bebidas"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Category](t, rec)
	if created.Code != "ALIMENTACAOBEBIDAS" {
		t.Errorf("code = %q", created.Code)
	}

	if rec := f.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "   "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty name: status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "---"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("codeless name: status = %d, want 400", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "letter or digit") {
		t.Errorf("codeless name message = %s, want the empty-code explanation", body)
	}

	f.categories.createErr = core.ErrDuplicateCode
	if rec := f.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Alimentacao Bebidas"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", rec.Code)
	}

	f.categories.updateErr = core.ErrNotFound
	if rec := f.do(t, http.MethodPut, "/api/categories/42", map[string]string{"name": "X"}); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d, want 404", rec.Code)
	}
	if rec := f.do(t, http.MethodPut, "/api/categories/abc", map[string]string{"name": "X"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}

	f.categories.deleteErr = nil
	if rec := f.do(t, http.MethodDelete, "/api/categories/1", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", rec.Code)
	}
	f.categories.deleteErr = core.ErrNotFound
	if rec := f.do(t, http.MethodDelete, "/api/categories/99", nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: status = %d, want 404", rec.Code)
	}
}

func TestUpdateMappingByID(t *testing.T) {
	f := newTestServer(t)
	f.mappings.byID[3] = core.Mapping{ID: 3, PlaceKey: "MARKET 123", Status: core.StatusPending}
	f.mappings.byKey["MARKET 123"] = f.mappings.byID[3]

	rec := f.do(t, http.MethodPut, "/api/places/categories/single", map[string]any{
		"mappingId": 3,
		"cleanName": "Market",
		"category":  "groceries",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored := decodeBody[core.Mapping](t, rec)
	if stored.Status != core.StatusLabeled || stored.Category != "GROCERIES" {
		t.Errorf("stored = %+v, want labeled GROCERIES", stored)
	}
}

func TestUpdateMappingFallbackToPlace(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPut, "/api/places/categories/single", map[string]any{
		"place":     " new shop ",
		"cleanName": "New Shop",
		"category":  "",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored := decodeBody[core.Mapping](t, rec)
	if stored.PlaceKey != "NEW SHOP" || stored.Status != core.StatusPending {
		t.Errorf("stored = %+v", stored)
	}
}

func TestUpdateMappingRequiresIDOrPlace(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodPut, "/api/places/categories/single", map[string]any{
		"cleanName": "X",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateMappingMissingID(t *testing.T) {
	f := newTestServer(t)
	f.mappings.updateErr = core.ErrNotFound

	rec := f.do(t, http.MethodPut, "/api/places/categories/single", map[string]any{
		"mappingId": 42,
		"cleanName": "X",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListPlaces(t *testing.T) {
	f := newTestServer(t)
	f.mappings.byKey["A"] = core.Mapping{ID: 1, PlaceKey: "A", Status: core.StatusPending}
	f.mappings.byKey["B"] = core.Mapping{ID: 2, PlaceKey: "B", Status: core.StatusLabeled, Category: "FOOD"}

	rec := f.do(t, http.MethodGet, "/api/places?status=pending", nil)
	mappings := decodeBody[[]core.Mapping](t, rec)
	if len(mappings) != 1 || mappings[0].PlaceKey != "A" {
		t.Errorf("pending mappings = %+v", mappings)
	}

	if rec := f.do(t, http.MethodGet, "/api/places?status=bogus", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status: status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newTestServer(t)

	if rec := f.do(t, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK ||
		!strings.Contains(rec.Body.String(), "faturas_requests_total") {
		t.Errorf("metrics = %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestReadyzFailsWhenDBUnreachable(t *testing.T) {
	f := &serverFixture{
		importer:   &fakeImporter{},
		statements: &fakeStatements{transactions: map[string][]core.Transaction{}},
		categories: &fakeCategories{},
		mappings:   &fakeMappings{byKey: map[string]core.Mapping{}, byID: map[int64]core.Mapping{}},
	}
	f.server = NewServer(":0", f.importer, f.statements, f.categories, f.mappings, okPinger{err: errors.New("down")})
	t.Cleanup(func() { f.server.Shutdown(context.Background()) })

	if rec := f.do(t, http.MethodGet, "/readyz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz = %d, want 503", rec.Code)
	}
}

func TestUnknownAPIRouteIs404(t *testing.T) {
	f := newTestServer(t)

	if rec := f.do(t, http.MethodGet, "/api/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCatchAllServesShell(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(t, http.MethodGet, "/dashboard/2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Errorf("catch-all should serve the dashboard shell, got %q", rec.Body.String())
	}
}
