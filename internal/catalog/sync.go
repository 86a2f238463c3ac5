package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/notion"
	"github.com/shopspring/decimal"
)

// Workspace is the slice of the workspace API the catalog needs.
type Workspace interface {
	QueryAll(ctx context.Context, databaseID string, req notion.QueryRequest) ([]notion.Page, error)
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	CreatePage(ctx context.Context, req notion.CreatePageRequest) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]any) (*notion.Page, error)
}

// Cache stores the last workspace listing between syncs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type ServiceParams struct {
	Index      *Index
	Workspace  Workspace
	DatabaseID string
	Cache      Cache
	CacheKey   string
	CacheTTL   time.Duration
	Logger     *logger.Logger
}

// Service keeps the shared index in step with the workspace and proxies
// admin edits.
type Service struct {
	index      *Index
	workspace  Workspace
	databaseID string
	cache      Cache
	cacheKey   string
	cacheTTL   time.Duration
	logg       *logger.Logger

	syncMu   sync.Mutex
	lastSync time.Time
}

type SyncResult struct {
	MergeResult
	Fetched   int       `json:"fetched"`
	FromCache bool      `json:"fromCache"`
	SyncedAt  time.Time `json:"syncedAt"`
}

// ItemPatch lists the editable fields of a workspace item; nil means unchanged.
type ItemPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	Category    *string          `json:"category"`
}

func (p ItemPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Unit == nil && p.Category == nil
}

type NewItem struct {
	Name        string          `json:"name" validate:"required"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Rubro       string          `json:"rubro"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
}

type SchemaProperty struct {
	Name    string                `json:"name"`
	Type    string                `json:"type"`
	Options []notion.SelectOption `json:"options,omitempty"`
}

type Schema struct {
	Title      string           `json:"title"`
	Properties []SchemaProperty `json:"properties"`
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Index == nil {
		return nil, errors.New("catalog index is required")
	}
	if p.Logger == nil {
		return nil, errors.New("logger is required")
	}
	key := p.CacheKey
	if key == "" {
		key = "catalog:items"
	}
	return &Service{
		index:      p.Index,
		workspace:  p.Workspace,
		databaseID: strings.TrimSpace(p.DatabaseID),
		cache:      p.Cache,
		cacheKey:   key,
		cacheTTL:   p.CacheTTL,
		logg:       p.Logger,
	}, nil
}

func (s *Service) Index() *Index {
	return s.index
}

// LastSync is the time of the last successful merge, zero if none.
func (s *Service) LastSync() time.Time {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	return s.lastSync
}

func (s *Service) configured() bool {
	return s.workspace != nil && s.databaseID != ""
}

// Sync merges the workspace items into the index. Unless force is set a
// cached listing is used when available. On failure the index keeps its
// last-known-good contents.
func (s *Service) Sync(ctx context.Context, force bool) (SyncResult, error) {
	if !s.configured() {
		return SyncResult{}, pkgerrors.New(pkgerrors.CodeUnavailable, "catalog workspace not configured")
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	var (
		rows      []WorkspaceItem
		fromCache bool
	)
	if !force {
		rows, fromCache = s.readCache(ctx)
	}
	if !fromCache {
		pages, err := s.workspace.QueryAll(ctx, s.databaseID, notion.QueryRequest{
			Sorts: []notion.Sort{notion.Ascending(colItemName)},
		})
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog sync failed, keeping current catalog")
			return SyncResult{}, err
		}
		rows = make([]WorkspaceItem, 0, len(pages))
		for _, page := range pages {
			rows = append(rows, FromPage(page))
		}
		s.writeCache(ctx, rows)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Convert(row))
	}
	res := SyncResult{
		MergeResult: s.index.Merge(items),
		Fetched:     len(rows),
		FromCache:   fromCache,
		SyncedAt:    time.Now().UTC(),
	}
	s.lastSync = res.SyncedAt
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"fetched":    res.Fetched,
		"added":      res.Added,
		"updated":    res.Updated,
		"skipped":    res.Skipped,
		"from_cache": res.FromCache,
	}), "catalog synced")
	return res, nil
}

// UpdateItem applies an admin edit. Workspace-backed items are patched
// remotely first; local-only items are edited in place.
func (s *Service) UpdateItem(ctx context.Context, id string, patch ItemPatch) (Item, error) {
	if patch.empty() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	item, found := s.index.GetByID(id)
	if !found {
		item, found = s.index.FindByNotionID(id)
	}
	if found && item.NotionID == "" {
		updated := applyPatch(item, patch)
		s.index.Upsert(updated)
		got, _ := s.index.GetByID(updated.ID)
		return got, nil
	}
	if !s.configured() {
		if !found {
			return Item{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "catalog item %s not found", id)
		}
		return Item{}, pkgerrors.New(pkgerrors.CodeUnavailable, "catalog workspace not configured")
	}

	pageID := id
	if found {
		pageID = item.NotionID
	}
	page, err := s.workspace.UpdatePage(ctx, pageID, patchProperties(patch))
	if err != nil {
		return Item{}, err
	}
	return s.absorb(ctx, *page), nil
}

// CreateItem adds a row to the items database and to the index.
func (s *Service) CreateItem(ctx context.Context, in NewItem) (Item, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.Price.IsNegative() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if !s.configured() {
		return Item{}, pkgerrors.New(pkgerrors.CodeUnavailable, "catalog workspace not configured")
	}

	price, _ := in.Price.Float64()
	props := map[string]any{
		colItemName:        notion.TitleValue(strings.TrimSpace(in.Name)),
		colItemCode:        notion.RichTextValue(strings.TrimSpace(in.Code)),
		colItemDescription: notion.RichTextValue(strings.TrimSpace(in.Description)),
		colItemPrice:       notion.NumberValue(price),
	}
	if in.Category != "" {
		props[colItemCategory] = notion.MultiSelectValue(splitLabels(in.Category)...)
	}
	if in.Unit != "" {
		props[colItemUnit] = notion.SelectValue(in.Unit)
	}
	if in.Rubro != "" {
		props[colItemRubro] = notion.SelectValue(in.Rubro)
	}

	page, err := s.workspace.CreatePage(ctx, notion.CreatePageRequest{DatabaseID: s.databaseID, Properties: props})
	if err != nil {
		return Item{}, err
	}
	return s.absorb(ctx, *page), nil
}

// Schema describes the items database columns, sorted by name.
func (s *Service) Schema(ctx context.Context) (Schema, error) {
	if !s.configured() {
		return Schema{}, pkgerrors.New(pkgerrors.CodeUnavailable, "catalog workspace not configured")
	}
	db, err := s.workspace.RetrieveDatabase(ctx, s.databaseID)
	if err != nil {
		return Schema{}, err
	}
	out := Schema{Title: db.Name(), Properties: make([]SchemaProperty, 0, len(db.Properties))}
	for name, prop := range db.Properties {
		if prop.Name != "" {
			name = prop.Name
		}
		out.Properties = append(out.Properties, SchemaProperty{Name: name, Type: prop.Type, Options: prop.Options()})
	}
	sort.Slice(out.Properties, func(i, j int) bool { return out.Properties[i].Name < out.Properties[j].Name })
	return out, nil
}

func (s *Service) absorb(ctx context.Context, page notion.Page) Item {
	item := Convert(FromPage(page))
	s.index.Merge([]Item{item})
	s.invalidate(ctx)
	got, ok := s.index.GetByID(item.ID)
	if !ok {
		return item
	}
	return got
}

func (s *Service) readCache(ctx context.Context) ([]WorkspaceItem, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cacheKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var rows []WorkspaceItem
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		s.logg.Warn(ctx, "discarding malformed catalog cache entry")
		return nil, false
	}
	return rows, true
}

func (s *Service) writeCache(ctx context.Context, rows []WorkspaceItem) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey, payload, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache invalidation failed")
	}
}

func patchProperties(p ItemPatch) map[string]any {
	props := map[string]any{}
	if p.Price != nil {
		f, _ := p.Price.Float64()
		props[colItemPrice] = notion.NumberValue(f)
	}
	if p.Name != nil {
		props[colItemName] = notion.TitleValue(strings.TrimSpace(*p.Name))
	}
	if p.Description != nil {
		props[colItemDescription] = notion.RichTextValue(strings.TrimSpace(*p.Description))
	}
	if p.Unit != nil {
		props[colItemUnit] = notion.SelectValue(*p.Unit)
	}
	if p.Category != nil {
		props[colItemCategory] = notion.MultiSelectValue(splitLabels(*p.Category)...)
	}
	return props
}

func applyPatch(item Item, p ItemPatch) Item {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		item.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Unit != nil {
		item.Unit = UnitFor(*p.Unit)
	}
	now := time.Now().UTC()
	item.UpdatedAt = &now
	return item
}

func splitLabels(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
