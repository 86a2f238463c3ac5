package controllers

import (
	"context"
	"time"

	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/internal/directory"
	"github.com/mepex/cotizador-backend/internal/quotations"
	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/internal/sessions"
)

// CatalogService is the catalog surface the handlers need.
type CatalogService interface {
	Index() *catalog.Index
	LastSync() time.Time
	Sync(ctx context.Context, force bool) (catalog.SyncResult, error)
	UpdateItem(ctx context.Context, id string, patch catalog.ItemPatch) (catalog.Item, error)
	CreateItem(ctx context.Context, in catalog.NewItem) (catalog.Item, error)
	Schema(ctx context.Context) (catalog.Schema, error)
}

type DirectoryService interface {
	ListClients(ctx context.Context) ([]directory.Client, error)
	SearchClients(ctx context.Context, q string) ([]directory.Client, error)
	ListProjects(ctx context.Context) ([]directory.Project, error)
	SearchProjects(ctx context.Context, q string) ([]directory.Project, error)
	GetProject(ctx context.Context, id string) (directory.Project, error)
	ListEvents(ctx context.Context) ([]directory.Event, error)
	SearchEvents(ctx context.Context, q string) ([]directory.Event, error)
}

type QuotationService interface {
	NextCotNumber(ctx context.Context, now time.Time) (string, error)
	Save(ctx context.Context, rec quotations.Record, pdf []byte) (quotations.Record, error)
	List(ctx context.Context) (quotations.ListResult, error)
	GetByID(ctx context.Context, id string) (quotations.Record, error)
	Update(ctx context.Context, id string, rec quotations.Record) (quotations.Record, error)
	UploadPDF(ctx context.Context, id, filename string, pdf []byte) error
}

type SessionManager interface {
	Create(ctx context.Context) (sessions.View, error)
	Get(ctx context.Context, id string) (sessions.View, error)
	Mutate(ctx context.Context, id string, fn func(*quote.Session) error) (sessions.View, error)
	Delete(ctx context.Context, id string) error
}

var (
	_ CatalogService   = (*catalog.Service)(nil)
	_ DirectoryService = (*directory.Service)(nil)
	_ QuotationService = (*quotations.Service)(nil)
	_ SessionManager   = (*sessions.Manager)(nil)
)
