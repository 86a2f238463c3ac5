package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/notion"
)

type fakeWorkspace struct {
	pages    map[string]notion.Page
	byDB     map[string][]notion.Page
	queries  []notion.QueryRequest
	queryAll int
}

func (f *fakeWorkspace) QueryDatabase(_ context.Context, db string, req notion.QueryRequest) (*notion.QueryResponse, error) {
	f.queries = append(f.queries, req)
	return &notion.QueryResponse{Results: f.byDB[db]}, nil
}

func (f *fakeWorkspace) QueryAll(_ context.Context, db string, _ notion.QueryRequest) ([]notion.Page, error) {
	f.queryAll++
	return f.byDB[db], nil
}

func (f *fakeWorkspace) RetrievePage(_ context.Context, id string) (*notion.Page, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, errors.New("page not found")
	}
	return &p, nil
}

type memoryCache struct {
	values map[string]string
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func title(text string) notion.Property {
	return notion.Property{Type: "title", Title: []notion.RichText{{PlainText: text}}}
}

func number(v float64) notion.Property {
	return notion.Property{Type: "number", Number: &v}
}

func relation(ids ...string) notion.Property {
	refs := make([]notion.Reference, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, notion.Reference{ID: id})
	}
	return notion.Property{Type: "relation", Relation: refs}
}

func clientPage() notion.Page {
	email := "compras@acme.com"
	return notion.Page{ID: "client-1", Properties: map[string]notion.Property{
		clientName:     title("Acme"),
		clientCUIT:     number(30712345678),
		clientEmail:    {Type: "email", Email: &email},
		clientIndustry: {Type: "multi_select", MultiSelect: []notion.SelectOption{{Name: "Agro"}}},
	}}
}

func eventPage() notion.Page {
	return notion.Page{ID: "event-1", Properties: map[string]notion.Property{
		eventName:  title("Expo Agro"),
		eventSetup: {Type: "date", Date: &notion.DateValue{Start: "2026-03-10"}},
		eventDates: {Type: "date", Date: &notion.DateValue{Start: "2026-03-14", End: "2026-03-16"}},
		eventVenue: {Type: "select", Select: &notion.SelectOption{Name: "La Rural"}},
	}}
}

func newFake() *fakeWorkspace {
	project := notion.Page{ID: "project-1", Properties: map[string]notion.Property{
		projectName:   title("Stand Acme"),
		projectNumber: number(112),
		projectClient: relation("client-1"),
		projectEvent:  relation("event-missing"),
	}}
	return &fakeWorkspace{
		pages: map[string]notion.Page{"project-1": project, "client-1": clientPage(), "event-1": eventPage()},
		byDB: map[string][]notion.Page{
			"clients":  {clientPage()},
			"projects": {project},
			"events":   {eventPage()},
		},
	}
}

func newTestService(ws Workspace, cache Cache) *Service {
	return NewService(ServiceParams{
		Workspace: ws,
		Databases: Databases{Clients: "clients", Projects: "projects", Events: "events"},
		Cache:     cache,
		CacheTTL:  time.Minute,
		Logger:    logger.Nop(),
	})
}

func TestClientFromPage(t *testing.T) {
	c := ClientFromPage(clientPage())
	if c.Name != "Acme" || c.CUIT != "30712345678" || c.Email != "compras@acme.com" {
		t.Fatalf("unexpected client %+v", c)
	}
	ref := c.Ref()
	if ref.Industry != "Agro" || ref.CUIT.String() != "30712345678" {
		t.Fatalf("unexpected ref %+v", ref)
	}
}

func TestEventFromPageReadsDateRange(t *testing.T) {
	e := EventFromPage(eventPage())
	if e.EventStartDate != "2026-03-14" || e.EventEndDate != "2026-03-16" || e.SetupDate != "2026-03-10" {
		t.Fatalf("unexpected dates %+v", e)
	}
	if e.Venue != "La Rural" || e.Pavilion == nil {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	ws := newFake()
	svc := newTestService(ws, nil)

	got, err := svc.SearchClients(context.Background(), " a ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || len(ws.queries) != 0 {
		t.Fatalf("expected no query for short term, got %d results %d queries", len(got), len(ws.queries))
	}
}

func TestSearchUsesTitleFilterAndPageSize(t *testing.T) {
	ws := newFake()
	svc := newTestService(ws, nil)

	got, err := svc.SearchEvents(context.Background(), "Expo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Expo Agro" {
		t.Fatalf("unexpected results %+v", got)
	}
	req := ws.queries[0]
	if req.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", req.PageSize)
	}
	filter := req.Filter.(map[string]any)
	if filter["property"] != eventName {
		t.Fatalf("unexpected filter %+v", filter)
	}
}

func TestGetProjectResolvesRelations(t *testing.T) {
	svc := newTestService(newFake(), nil)

	p, err := svc.GetProject(context.Background(), "project-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Number != "112" || p.ClientID != "client-1" {
		t.Fatalf("unexpected project %+v", p)
	}
	if p.Client == nil || p.Client.Name != "Acme" {
		t.Fatalf("expected related client, got %+v", p.Client)
	}
	if p.Event != nil {
		t.Fatalf("missing event must be left empty")
	}
}

func TestListUsesCache(t *testing.T) {
	ws := newFake()
	cache := &memoryCache{values: map[string]string{}}
	svc := newTestService(ws, cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		clients, err := svc.ListClients(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(clients) != 1 || clients[0].Name != "Acme" {
			t.Fatalf("unexpected clients %+v", clients)
		}
	}
	if ws.queryAll != 1 {
		t.Fatalf("expected one workspace listing, got %d", ws.queryAll)
	}
}

func TestUnconfiguredDirectory(t *testing.T) {
	svc := NewService(ServiceParams{})
	if _, err := svc.ListEvents(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if got, err := svc.SearchProjects(context.Background(), "x"); err != nil || len(got) != 0 {
		t.Fatalf("short search must not fail")
	}
}
