package quotations

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mepex/cotizador-backend/pkg/enums"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/notion"
)

// Quotation database columns.
const (
	propName      = "Nombre"
	propType      = "Tipo"
	propClients   = "Clientes"
	propProjects  = "Proyectos 2026"
	propEvents    = "Eventos 2026"
	propSurface   = "Superficie"
	propStandType = "Tipo Stand"
	propHeight    = "Altura"
	propSubtotal  = "Subtotal"
	propTax       = "IVA"
	propTotal     = "Total"
	propIssued    = "Fecha Emisión"
	propPDF       = "PDF"
)

// Workspace is the subset of the workspace client the remote store needs.
type Workspace interface {
	QueryAll(ctx context.Context, databaseID string, req notion.QueryRequest) ([]notion.Page, error)
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
	CreatePage(ctx context.Context, req notion.CreatePageRequest) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]any) (*notion.Page, error)
	ListBlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
	AppendBlockChildren(ctx context.Context, blockID string, children []map[string]any) error
	DeleteBlock(ctx context.Context, blockID string) error
	CreateFileUpload(ctx context.Context, filename string) (*notion.FileUpload, error)
	SendFileUpload(ctx context.Context, uploadID, filename, contentType string, data []byte) (*notion.FileUpload, error)
}

// RemoteStore persists records as rows of the quotations database. The row
// properties summarize the record; the full record lives as JSON in the
// first code block of the page body.
type RemoteStore struct {
	ws         Workspace
	databaseID string
}

func NewRemoteStore(ws Workspace, databaseID string) *RemoteStore {
	return &RemoteStore{ws: ws, databaseID: strings.TrimSpace(databaseID)}
}

// Configured reports whether remote calls can be attempted.
func (s *RemoteStore) Configured() bool {
	return s != nil && s.ws != nil && s.databaseID != ""
}

func (s *RemoteStore) ensure() error {
	if !s.Configured() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "quotations workspace not configured")
	}
	return nil
}

// Create stores rec and returns the page id and url assigned to it.
func (s *RemoteStore) Create(ctx context.Context, rec Record) (string, string, error) {
	if err := s.ensure(); err != nil {
		return "", "", err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quotation record")
	}
	page, err := s.ws.CreatePage(ctx, notion.CreatePageRequest{
		DatabaseID: s.databaseID,
		Properties: recordProperties(rec),
		Children:   []map[string]any{notion.CodeBlockJSON(string(body))},
	})
	if err != nil {
		return "", "", err
	}
	return page.ID, page.URL, nil
}

// Update rewrites the row properties of pageID and, when rec carries a
// full state, replaces the stored JSON block.
func (s *RemoteStore) Update(ctx context.Context, pageID string, rec Record, replaceBody bool) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if _, err := s.ws.UpdatePage(ctx, pageID, recordProperties(rec)); err != nil {
		return err
	}
	if !replaceBody {
		return nil
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quotation record")
	}
	blocks, err := s.ws.ListBlockChildren(ctx, pageID)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if b.Type == "code" {
			if err := s.ws.DeleteBlock(ctx, b.ID); err != nil {
				return err
			}
			break
		}
	}
	return s.ws.AppendBlockChildren(ctx, pageID, []map[string]any{notion.CodeBlockJSON(string(body))})
}

// List returns summary records built from the row properties, newest
// issue date first.
func (s *RemoteStore) List(ctx context.Context) ([]Record, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	pages, err := s.ws.QueryAll(ctx, s.databaseID, notion.QueryRequest{
		Sorts:    []notion.Sort{notion.Descending(propIssued)},
		PageSize: 100,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(pages))
	for _, p := range pages {
		out = append(out, summaryFromPage(p))
	}
	return out, nil
}

// Get returns the full record stored in the page body. Pages without a
// readable body yield the property summary.
func (s *RemoteStore) Get(ctx context.Context, pageID string) (Record, error) {
	if err := s.ensure(); err != nil {
		return Record{}, err
	}
	page, err := s.ws.RetrievePage(ctx, pageID)
	if err != nil {
		return Record{}, err
	}
	summary := summaryFromPage(*page)

	blocks, err := s.ws.ListBlockChildren(ctx, page.ID)
	if err != nil {
		return Record{}, err
	}
	text, ok := notion.FirstCodeText(blocks)
	if !ok {
		return summary, nil
	}
	rec, err := Decode([]byte(text))
	if err != nil {
		return summary, nil
	}
	rec.ID = page.ID
	rec.NotionURL = page.URL
	return rec, nil
}

// AttachPDF uploads data and links it to the PDF column of pageID.
func (s *RemoteStore) AttachPDF(ctx context.Context, pageID, filename string, data []byte) error {
	if err := s.ensure(); err != nil {
		return err
	}
	upload, err := s.ws.CreateFileUpload(ctx, filename)
	if err != nil {
		return err
	}
	if _, err := s.ws.SendFileUpload(ctx, upload.ID, filename, "application/pdf", data); err != nil {
		return err
	}
	_, err = s.ws.UpdatePage(ctx, pageID, map[string]any{propPDF: notion.FileUploadValue(upload.ID)})
	return err
}

func recordProperties(rec Record) map[string]any {
	props := map[string]any{
		propName:      notion.TitleValue(rec.CotNumber),
		propType:      notion.SelectValue(capitalize(rec.Type.String())),
		propSurface:   notion.NumberValue(rec.Params.Surface),
		propStandType: notion.SelectValue(capitalize(rec.Params.StandType)),
		propHeight:    notion.SelectValue(rec.Params.Height.Label),
		propSubtotal:  notion.NumberValue(rec.Totals.Subtotal),
		propTax:       notion.NumberValue(rec.Totals.Tax),
		propTotal:     notion.NumberValue(rec.Totals.Total),
		propClients:   notion.RelationValue(deref(rec.Params.Client.ID)),
		propProjects:  notion.RelationValue(deref(rec.Params.Project.ID)),
		propEvents:    notion.RelationValue(deref(rec.Params.Event.ID)),
	}
	if rec.Date != "" {
		props[propIssued] = notion.DateValueOf(rec.Date)
	}
	return props
}

func summaryFromPage(p notion.Page) Record {
	rec := Record{
		ID:        p.ID,
		CotNumber: p.Title(propName),
		Date:      p.Date(propIssued),
		Type:      enums.QuotationType(strings.ToLower(p.Select(propType))),
		Items:     []Item{},
		Spaces:    []SpaceRecord{},
		SavedAt:   p.LastEditedTime,
		NotionURL: p.URL,
	}
	if !rec.Type.IsValid() {
		rec.Type = enums.QuotationTypeStand
	}
	rec.Params.StandType = strings.ToLower(p.Select(propStandType))
	rec.Params.Height.Label = p.Select(propHeight)
	rec.Params.Surface, _ = p.Number(propSurface)
	rec.Totals.Subtotal, _ = p.Number(propSubtotal)
	rec.Totals.Tax, _ = p.Number(propTax)
	rec.Totals.Total, _ = p.Number(propTotal)
	rec.Params.Client.ID = optionalID(p.FirstRelation(propClients))
	rec.Params.Project.ID = optionalID(p.FirstRelation(propProjects))
	rec.Params.Event.ID = optionalID(p.FirstRelation(propEvents))
	return rec
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
