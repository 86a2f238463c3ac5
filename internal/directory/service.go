package directory

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/notion"
)

const (
	// MinQueryLength is the shortest search term sent to the workspace.
	MinQueryLength = 2
	searchPageSize = 10
)

type Workspace interface {
	QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest) (*notion.QueryResponse, error)
	QueryAll(ctx context.Context, databaseID string, req notion.QueryRequest) ([]notion.Page, error)
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
}

// Cache holds full listings for a short time.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Databases struct {
	Clients  string
	Projects string
	Events   string
}

type ServiceParams struct {
	Workspace Workspace
	Databases Databases
	Cache     Cache
	KeyFunc   func(name string) string
	CacheTTL  time.Duration
	Logger    *logger.Logger
}

// Service reads clients, projects and events from the workspace.
type Service struct {
	ws       Workspace
	dbs      Databases
	cache    Cache
	keyFunc  func(string) string
	cacheTTL time.Duration
	logg     *logger.Logger
}

func NewService(p ServiceParams) *Service {
	keyFunc := p.KeyFunc
	if keyFunc == nil {
		keyFunc = func(name string) string { return "directory:" + name }
	}
	return &Service{
		ws:       p.Workspace,
		dbs:      p.Databases,
		cache:    p.Cache,
		keyFunc:  keyFunc,
		cacheTTL: p.CacheTTL,
		logg:     p.Logger,
	}
}

func (s *Service) ready(databaseID string) error {
	if s.ws == nil || strings.TrimSpace(databaseID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "workspace directory not configured")
	}
	return nil
}

func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return listAll(ctx, s, "clients", s.dbs.Clients, ClientFromPage)
}

func (s *Service) SearchClients(ctx context.Context, q string) ([]Client, error) {
	return search(ctx, s, s.dbs.Clients, clientName, q, ClientFromPage)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return listAll(ctx, s, "projects", s.dbs.Projects, ProjectFromPage)
}

func (s *Service) SearchProjects(ctx context.Context, q string) ([]Project, error) {
	return search(ctx, s, s.dbs.Projects, projectName, q, ProjectFromPage)
}

func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return listAll(ctx, s, "events", s.dbs.Events, EventFromPage)
}

func (s *Service) SearchEvents(ctx context.Context, q string) ([]Event, error) {
	return search(ctx, s, s.dbs.Events, eventName, q, EventFromPage)
}

// GetProject returns a project with its related client and event. Failing
// to resolve a relation is logged and leaves it empty.
func (s *Service) GetProject(ctx context.Context, id string) (Project, error) {
	if s.ws == nil {
		return Project{}, pkgerrors.New(pkgerrors.CodeUnavailable, "workspace directory not configured")
	}
	page, err := s.ws.RetrievePage(ctx, id)
	if err != nil {
		return Project{}, err
	}
	project := ProjectFromPage(*page)
	ctx = s.logg.WithField(ctx, "project_id", project.ID)

	if project.ClientID != "" {
		if cp, err := s.ws.RetrievePage(ctx, project.ClientID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "could not fetch related client")
		} else {
			c := ClientFromPage(*cp)
			project.Client = &c
		}
	}
	if project.EventID != "" {
		if ep, err := s.ws.RetrievePage(ctx, project.EventID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "could not fetch related event")
		} else {
			e := EventFromPage(*ep)
			project.Event = &e
		}
	}
	return project, nil
}

func listAll[T any](ctx context.Context, s *Service, name, databaseID string, parse func(notion.Page) T) ([]T, error) {
	if err := s.ready(databaseID); err != nil {
		return nil, err
	}
	key := s.keyFunc(name)
	if cached, ok := readCached[T](ctx, s, key); ok {
		return cached, nil
	}
	pages, err := s.ws.QueryAll(ctx, databaseID, notion.QueryRequest{PageSize: 100})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(pages))
	for _, p := range pages {
		out = append(out, parse(p))
	}
	writeCached(ctx, s, key, out)
	return out, nil
}

// search returns at most searchPageSize matches; short terms match nothing.
func search[T any](ctx context.Context, s *Service, databaseID, titleProp, q string, parse func(notion.Page) T) ([]T, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []T{}, nil
	}
	if err := s.ready(databaseID); err != nil {
		return nil, err
	}
	resp, err := s.ws.QueryDatabase(ctx, databaseID, notion.QueryRequest{
		Filter:   notion.TitleContains(titleProp, q),
		PageSize: searchPageSize,
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, parse(p))
	}
	return out, nil
}

func readCached[T any](ctx context.Context, s *Service, key string) ([]T, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil, false
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "discarding unreadable directory cache")
		return nil, false
	}
	return out, true
}

func writeCached[T any](ctx context.Context, s *Service, key string, values []T) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "directory cache write failed")
	}
}
