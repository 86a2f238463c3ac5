package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/notion"
	"github.com/shopspring/decimal"
)

type fakeWorkspace struct {
	pages      []notion.Page
	queryErr   error
	queries    int
	updated    map[string]map[string]any
	created    []notion.CreatePageRequest
	database   *notion.Database
	updateResp func(id string) notion.Page
}

func (f *fakeWorkspace) QueryAll(_ context.Context, _ string, _ notion.QueryRequest) ([]notion.Page, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.pages, nil
}

func (f *fakeWorkspace) RetrieveDatabase(context.Context, string) (*notion.Database, error) {
	if f.database == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "missing")
	}
	return f.database, nil
}

func (f *fakeWorkspace) CreatePage(_ context.Context, req notion.CreatePageRequest) (*notion.Page, error) {
	f.created = append(f.created, req)
	page := itemPage("page_created", "Nuevo", "NEW-1", "Pisos", 100)
	return &page, nil
}

func (f *fakeWorkspace) UpdatePage(_ context.Context, id string, props map[string]any) (*notion.Page, error) {
	if f.updated == nil {
		f.updated = map[string]map[string]any{}
	}
	f.updated[id] = props
	page := f.updateResp(id)
	return &page, nil
}

type fakeCache struct {
	values  map[string]string
	deletes int
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if c.values == nil {
		c.values = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	default:
		c.values[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}

func itemPage(id, name, code, rubro string, price float64) notion.Page {
	p := price
	return notion.Page{
		ID: id,
		Properties: map[string]notion.Property{
			colItemName:  {Type: "title", Title: []notion.RichText{{PlainText: name}}},
			colItemCode:  {Type: "rich_text", RichText: []notion.RichText{{PlainText: code}}},
			colItemRubro: {Type: "select", Select: &notion.SelectOption{Name: rubro}},
			colItemPrice: {Type: "number", Number: &p},
		},
	}
}

func newTestService(t *testing.T, ws *fakeWorkspace, cache *fakeCache, items ...Item) *Service {
	t.Helper()
	params := ServiceParams{
		Index:      NewIndex(items...),
		DatabaseID: "db_items",
		CacheKey:   "cz:catalog:items",
		CacheTTL:   time.Minute,
		Logger:     logger.Nop(),
	}
	if ws != nil {
		params.Workspace = ws
	}
	if cache != nil {
		params.Cache = cache
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSyncMergesAndCaches(t *testing.T) {
	ws := &fakeWorkspace{pages: []notion.Page{
		itemPage("p1", "Pared", "INF-1", "Infraestructura", 12000),
		itemPage("p2", "Spot", "IL-1", "Iluminación", 3500),
	}}
	cache := &fakeCache{}
	local := autoItem("notion_inf_1", "perimeter", "1")
	svc := newTestService(t, ws, cache, local)

	res, err := svc.Sync(context.Background(), false)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Fetched != 2 || res.Added != 1 || res.Updated != 1 || res.FromCache {
		t.Fatalf("unexpected result %+v", res)
	}
	wall, _ := svc.Index().GetByID("notion_inf_1")
	if !wall.AutoCalculate || wall.NotionID != "p1" || !wall.Price.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("unexpected merged item %+v", wall)
	}

	res, err = svc.Sync(context.Background(), false)
	if err != nil || !res.FromCache || ws.queries != 1 {
		t.Fatalf("second sync should use cache: %+v queries=%d err=%v", res, ws.queries, err)
	}
	if _, err := svc.Sync(context.Background(), true); err != nil || ws.queries != 2 {
		t.Fatalf("forced sync should query the workspace")
	}
	if svc.LastSync().IsZero() {
		t.Fatalf("last sync should be recorded")
	}
}

func TestSyncFailureKeepsIndex(t *testing.T) {
	ws := &fakeWorkspace{queryErr: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	svc := newTestService(t, ws, nil, testItem("seed", "flooring", 10))

	if _, err := svc.Sync(context.Background(), true); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if svc.Index().Len() != 1 {
		t.Fatalf("index must keep last-known-good items")
	}
}

func TestSyncMalformedCacheRefetches(t *testing.T) {
	ws := &fakeWorkspace{pages: []notion.Page{itemPage("p1", "Pared", "INF-1", "Infraestructura", 1)}}
	cache := &fakeCache{values: map[string]string{"cz:catalog:items": "{not json"}}
	svc := newTestService(t, ws, cache)
	res, err := svc.Sync(context.Background(), false)
	if err != nil || res.FromCache || ws.queries != 1 {
		t.Fatalf("malformed cache should be ignored: %+v %v", res, err)
	}
	var rows []WorkspaceItem
	if err := json.Unmarshal([]byte(cache.values["cz:catalog:items"]), &rows); err != nil || len(rows) != 1 {
		t.Fatalf("cache should be rewritten: %v", err)
	}
}

func TestSyncNotConfigured(t *testing.T) {
	svc := newTestService(t, nil, nil)
	if _, err := svc.Sync(context.Background(), false); !pkgerrors.IsCode(err, pkgerrors.CodeUnavailable) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestUpdateItemResolvesWorkspacePage(t *testing.T) {
	ws := &fakeWorkspace{updateResp: func(id string) notion.Page {
		return itemPage(id, "Pared premium", "INF-1", "Infraestructura", 15000)
	}}
	cache := &fakeCache{values: map[string]string{"cz:catalog:items": "[]"}}
	existing := Convert(WorkspaceItem{NotionID: "page_wall", Name: "Pared", Code: "INF-1", Rubro: "Infraestructura", Price: 12000})
	svc := newTestService(t, ws, cache, existing)

	price := decimal.NewFromInt(15000)
	name := "Pared premium"
	got, err := svc.UpdateItem(context.Background(), "notion_inf_1", ItemPatch{Price: &price, Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	props, ok := ws.updated["page_wall"]
	if !ok {
		t.Fatalf("expected update against the workspace page id")
	}
	if _, ok := props[colItemPrice]; !ok {
		t.Fatalf("price should map to the Importe column")
	}
	if _, ok := props[colItemName]; !ok {
		t.Fatalf("name should map to the Item column")
	}
	if got.Name != "Pared premium" || !got.Price.Equal(price) {
		t.Fatalf("unexpected item %+v", got)
	}
	if cache.deletes != 1 {
		t.Fatalf("cache should be invalidated")
	}
}

func TestUpdateLocalItem(t *testing.T) {
	svc := newTestService(t, nil, nil, testItem("mesa", "equipment", 10))
	price := decimal.NewFromInt(20)
	got, err := svc.UpdateItem(context.Background(), "mesa", ItemPatch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Price.Equal(price) || got.UpdatedAt == nil {
		t.Fatalf("unexpected local update %+v", got)
	}
	if _, err := svc.UpdateItem(context.Background(), "mesa", ItemPatch{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty patch must be rejected")
	}
	if _, err := svc.UpdateItem(context.Background(), "nope", ItemPatch{Price: &price}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unknown item without workspace should be not found, got %v", err)
	}
}

func TestCreateItemAndSchema(t *testing.T) {
	ws := &fakeWorkspace{database: &notion.Database{
		Title: []notion.RichText{{PlainText: "Items"}},
		Properties: map[string]notion.DatabaseProperty{
			"Unidad":  {Name: "Unidad", Type: "select", Select: &notion.OptionsConfig{Options: []notion.SelectOption{{Name: "m2"}, {Name: "Unidad"}}}},
			"Importe": {Name: "Importe", Type: "number"},
		},
	}}
	svc := newTestService(t, ws, nil)

	item, err := svc.CreateItem(context.Background(), NewItem{Name: "Nuevo", Code: "NEW-1", Category: "Tableros, Audiovisual", Unit: "m2", Price: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ID != "notion_new_1" || svc.Index().Len() != 1 {
		t.Fatalf("created item should be indexed: %+v", item)
	}
	if len(ws.created) != 1 || ws.created[0].DatabaseID != "db_items" {
		t.Fatalf("unexpected create request %+v", ws.created)
	}
	if _, err := svc.CreateItem(context.Background(), NewItem{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("blank name must be rejected")
	}

	schema, err := svc.Schema(context.Background())
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.Title != "Items" || len(schema.Properties) != 2 || schema.Properties[0].Name != "Importe" {
		t.Fatalf("unexpected schema %+v", schema)
	}
	if len(schema.Properties[1].Options) != 2 {
		t.Fatalf("select options should be exposed")
	}
}
