package quotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/metrics"
	"github.com/mepex/cotizador-backend/pkg/notion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkspace struct {
	mu        sync.Mutex
	fail      error
	pages     map[string]notion.Page
	bodies    map[string][]notion.Block
	created   []notion.CreatePageRequest
	updates   []map[string]any
	uploads   []string
	deleted   []string
	uploadErr error
	nextID    int
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{pages: map[string]notion.Page{}, bodies: map[string][]notion.Block{}}
}

func codeBlock(id, text string) notion.Block {
	return notion.Block{ID: id, Type: "code", Code: &notion.CodeBlock{
		Language: "json",
		RichText: []notion.RichText{{Type: "text", PlainText: text}},
	}}
}

func (f *fakeWorkspace) QueryAll(_ context.Context, _ string, _ notion.QueryRequest) ([]notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]notion.Page, 0, len(f.pages))
	for _, p := range f.pages {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeWorkspace) RetrievePage(_ context.Context, id string) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	p, ok := f.pages[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "page not found")
	}
	return &p, nil
}

func (f *fakeWorkspace) CreatePage(_ context.Context, req notion.CreatePageRequest) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)
	page := notion.Page{ID: id, URL: "https://workspace.example/" + id}
	f.pages[id] = page
	f.created = append(f.created, req)

	var text string
	for _, child := range req.Children {
		code := child["code"].(map[string]any)
		for _, seg := range code["rich_text"].([]any) {
			text += seg.(map[string]any)["text"].(map[string]any)["content"].(string)
		}
	}
	f.bodies[id] = []notion.Block{codeBlock("block-"+id, text)}
	return &page, nil
}

func (f *fakeWorkspace) UpdatePage(_ context.Context, id string, props map[string]any) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, props)
	p := f.pages[id]
	return &p, nil
}

func (f *fakeWorkspace) ListBlockChildren(_ context.Context, id string) ([]notion.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[id], nil
}

func (f *fakeWorkspace) AppendBlockChildren(_ context.Context, id string, _ []map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[id] = append(f.bodies[id], codeBlock("appended", "{}"))
	return nil
}

func (f *fakeWorkspace) DeleteBlock(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeWorkspace) CreateFileUpload(_ context.Context, filename string) (*notion.FileUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, filename)
	return &notion.FileUpload{ID: "upload-1"}, nil
}

func (f *fakeWorkspace) SendFileUpload(_ context.Context, id, _, _ string, _ []byte) (*notion.FileUpload, error) {
	return &notion.FileUpload{ID: id, Status: "uploaded"}, nil
}

func newTestService(t *testing.T, ws Workspace, reg prometheus.Registerer) *Service {
	t.Helper()
	local := NewLocalStore(setupQuotationsTestDB(t), 50, logger.Nop())
	svc, err := NewService(ServiceParams{
		Remote:        NewRemoteStore(ws, "quotations-db"),
		Local:         local,
		Metrics:       metrics.NewRemoteMetrics(reg),
		Logger:        logger.Nop(),
		UploadTimeout: time.Second,
	})
	require.NoError(t, err)
	return svc
}

func waitUploads(t *testing.T, svc *Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Wait(ctx))
}

func TestSaveRemoteFirstAdoptsRemoteID(t *testing.T) {
	ws := newFakeWorkspace()
	svc := newTestService(t, ws, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, sampleRecord("local-uuid", "COT-2026-0001"), []byte("%PDF-1.4"))
	require.NoError(t, err)
	waitUploads(t, svc)

	assert.Equal(t, "page-1", saved.ID)
	assert.Equal(t, "https://workspace.example/page-1", saved.NotionURL)
	require.Len(t, ws.created, 1)
	props := ws.created[0].Properties
	assert.Equal(t, notion.TitleValue("COT-2026-0001"), props[propName])
	assert.Equal(t, notion.SelectValue("Stand"), props[propType])
	assert.Equal(t, notion.RelationValue(), props[propClients])

	assert.Equal(t, []string{"COT-2026-0001.pdf"}, ws.uploads)
	require.Len(t, ws.updates, 1)
	assert.Contains(t, ws.updates[0], propPDF)

	local, err := svc.local.Get(ctx, "COT-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "page-1", local.ID)
}

func TestSaveFallsBackToLocal(t *testing.T) {
	ws := newFakeWorkspace()
	ws.fail = pkgerrors.New(pkgerrors.CodeDependency, "workspace down")
	reg := prometheus.NewRegistry()
	svc := newTestService(t, ws, reg)
	ctx := context.Background()

	saved, err := svc.Save(ctx, sampleRecord("local-uuid", "COT-2026-0001"), []byte("%PDF"))
	require.NoError(t, err)
	waitUploads(t, svc)

	assert.Equal(t, "local-uuid", saved.ID)
	assert.Empty(t, ws.uploads)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, list.Source)
	require.Len(t, list.Records, 1)

	got, err := svc.GetByID(ctx, "COT-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, "local-uuid", got.ID)

	families, err := reg.Gather()
	require.NoError(t, err)
	var fallbacks float64
	for _, mf := range families {
		if mf.GetName() != "local_fallback_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			fallbacks += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), fallbacks)
}

func TestSaveFailsWhenBothStoresFail(t *testing.T) {
	ws := newFakeWorkspace()
	ws.fail = errors.New("workspace down")
	svc, err := NewService(ServiceParams{
		Remote: NewRemoteStore(ws, "quotations-db"),
		Local:  NewLocalStore(nil, 0, nil),
	})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), sampleRecord("a", "COT-2026-0001"), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "workspace down")
}

func TestPDFUploadFailureDoesNotAffectSave(t *testing.T) {
	ws := newFakeWorkspace()
	ws.uploadErr = errors.New("upload rejected")
	svc := newTestService(t, ws, nil)

	saved, err := svc.Save(context.Background(), sampleRecord("a", "COT-2026-0001"), []byte("%PDF"))
	require.NoError(t, err)
	waitUploads(t, svc)
	assert.Equal(t, "page-1", saved.ID)
}

func TestGetByIDReadsFullRecordFromPageBody(t *testing.T) {
	ws := newFakeWorkspace()
	svc := newTestService(t, ws, nil)
	ctx := context.Background()

	rec := sampleRecord("local-uuid", "COT-2026-0001")
	saved, err := svc.Save(ctx, rec, nil)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "page-1", got.ID)
	assert.Equal(t, rec.Items, got.Items)
	assert.Equal(t, "COT-2026-0001", got.CotNumber)
}

func TestGetByIDWithUnreadableBodyReturnsSummary(t *testing.T) {
	ws := newFakeWorkspace()
	surface := 25.0
	ws.pages["page-x"] = notion.Page{ID: "page-x", Properties: map[string]notion.Property{
		propName:    {Type: "title", Title: []notion.RichText{{PlainText: "COT-2026-0009"}}},
		propType:    {Type: "select", Select: &notion.SelectOption{Name: "Expo"}},
		propSurface: {Type: "number", Number: &surface},
	}}
	ws.bodies["page-x"] = []notion.Block{codeBlock("b", "{broken")}
	svc := newTestService(t, ws, nil)

	got, err := svc.GetByID(context.Background(), "page-x")
	require.NoError(t, err)
	assert.Equal(t, "COT-2026-0009", got.CotNumber)
	assert.Equal(t, "expo", got.Type.String())
	assert.Equal(t, 25.0, got.Params.Surface)
	assert.Empty(t, got.Items)
}

func TestUpdateReplacesBodyBlock(t *testing.T) {
	ws := newFakeWorkspace()
	svc := newTestService(t, ws, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, sampleRecord("a", "COT-2026-0001"), nil)
	require.NoError(t, err)

	saved.Totals.Total = 999
	updated, err := svc.Update(ctx, saved.ID, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, []string{"block-page-1"}, ws.deleted)

	local, err := svc.local.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 999.0, local.Totals.Total)
}

func TestUploadPDFValidation(t *testing.T) {
	svc := newTestService(t, newFakeWorkspace(), nil)
	ctx := context.Background()

	err := svc.UploadPDF(ctx, "page-1", "x.pdf", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	offline, err := NewService(ServiceParams{Local: NewLocalStore(nil, 0, nil)})
	require.NoError(t, err)
	err = offline.UploadPDF(ctx, "page-1", "x.pdf", []byte("%PDF"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnavailable))
}

func TestRecordPropertiesCapitalizeSelects(t *testing.T) {
	rec := sampleRecord("a", "COT-2026-0001")
	rec.Type = "alquiler"
	rec.Params.StandType = "peninsula"
	rec.Params.Height.Label = "Media"
	rec.Params.Client.ID = strPtr("client-1")

	props := recordProperties(rec)
	raw, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Tipo":{"select":{"name":"Alquiler"}}`)
	assert.Contains(t, string(raw), `"Tipo Stand":{"select":{"name":"Peninsula"}}`)
	assert.Contains(t, string(raw), `"Clientes":{"relation":[{"id":"client-1"}]}`)
	assert.Contains(t, string(raw), `"Fecha Emisión":{"date":{"start":"2026-03-14"}}`)
}
