package directory

import (
	"strconv"

	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/notion"
)

// Workspace columns per database. Some names carry trailing spaces or
// dashes exactly as they exist in the workspace.
const (
	clientName     = "Nombre Empresa"
	clientCompany  = "Razón Social"
	clientCUIT     = "CUIT"
	clientEmail    = "Correo Electrónico"
	clientPhone    = "Teléfono"
	clientIndustry = "Rubro "

	projectName   = "Cliente"
	projectNumber = "N° "
	projectArea   = "Área"
	projectStatus = "Estado"
	projectDate   = "Fecha de solicitud"
	projectClient = "Empresa"
	projectEvent  = "Eventos 2026-"

	eventName      = "Nombre"
	eventStatus    = "Estado"
	eventSetup     = "Fecha de armado"
	eventTeardown  = "Fecha de desarme"
	eventPhone     = "Teléfono"
	eventPavilion  = "Pabellón"
	eventTotal     = "Stands totales"
	eventCompleted = "Stands terminados"
	eventPriority  = "Prioridad"
	eventDates     = "Fecha de evento"
	eventVenue     = "Lugar"
	eventVenueRef  = "Predio"
)

type Client struct {
	ID          string   `json:"id"`
	NotionURL   string   `json:"notionUrl,omitempty"`
	Name        string   `json:"name"`
	RazonSocial string   `json:"razonSocial,omitempty"`
	CUIT        string   `json:"cuit,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Rubro       []string `json:"rubro"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Ref is the identity snapshot a quotation keeps.
func (c Client) Ref() quote.ClientRef {
	ref := quote.ClientRef{
		ID:      c.ID,
		Name:    c.Name,
		Company: c.RazonSocial,
		CUIT:    quote.LooseString(c.CUIT),
		Email:   c.Email,
		Phone:   c.Phone,
	}
	if len(c.Rubro) > 0 {
		ref.Industry = c.Rubro[0]
	}
	return ref
}

type Project struct {
	ID          string  `json:"id"`
	NotionURL   string  `json:"notionUrl,omitempty"`
	Name        string  `json:"name"`
	Number      string  `json:"number,omitempty"`
	Area        string  `json:"area,omitempty"`
	Status      string  `json:"status,omitempty"`
	RequestDate string  `json:"requestDate,omitempty"`
	ClientID    string  `json:"clientId,omitempty"`
	EventID     string  `json:"eventId,omitempty"`
	Client      *Client `json:"client,omitempty"`
	Event       *Event  `json:"event,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

func (p Project) Ref() quote.ProjectRef {
	return quote.ProjectRef{
		ID:     p.ID,
		Name:   p.Name,
		Number: quote.LooseString(p.Number),
		Status: p.Status,
		Area:   p.Area,
	}
}

type Event struct {
	ID              string   `json:"id"`
	NotionURL       string   `json:"notionUrl,omitempty"`
	Name            string   `json:"name"`
	Status          string   `json:"status,omitempty"`
	SetupDate       string   `json:"setupDate,omitempty"`
	TeardownDate    string   `json:"teardownDate,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Pavilion        []string `json:"pavilion"`
	TotalStands     *float64 `json:"totalStands,omitempty"`
	CompletedStands *float64 `json:"completedStands,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	EventStartDate  string   `json:"eventStartDate,omitempty"`
	EventEndDate    string   `json:"eventEndDate,omitempty"`
	Venue           string   `json:"venue,omitempty"`
	VenueID         string   `json:"venueId,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	UpdatedAt       string   `json:"updatedAt,omitempty"`
}

func (e Event) Ref() quote.EventRef {
	return quote.EventRef{
		ID:             e.ID,
		Name:           e.Name,
		SetupDate:      e.SetupDate,
		TeardownDate:   e.TeardownDate,
		EventStartDate: e.EventStartDate,
		EventEndDate:   e.EventEndDate,
		Venue:          e.Venue,
		Pavilion:       append([]string(nil), e.Pavilion...),
		Status:         e.Status,
	}
}

func ClientFromPage(p notion.Page) Client {
	return Client{
		ID:          p.ID,
		NotionURL:   p.URL,
		Name:        p.Title(clientName),
		RazonSocial: p.RichText(clientCompany),
		CUIT:        numberText(p, clientCUIT),
		Email:       p.Email(clientEmail),
		Phone:       p.Phone(clientPhone),
		Rubro:       p.MultiSelect(clientIndustry),
		CreatedAt:   p.CreatedTime,
		UpdatedAt:   p.LastEditedTime,
	}
}

func ProjectFromPage(p notion.Page) Project {
	return Project{
		ID:          p.ID,
		NotionURL:   p.URL,
		Name:        p.Title(projectName),
		Number:      numberText(p, projectNumber),
		Area:        p.RichText(projectArea),
		Status:      p.Status(projectStatus),
		RequestDate: p.Date(projectDate),
		ClientID:    p.FirstRelation(projectClient),
		EventID:     p.FirstRelation(projectEvent),
		CreatedAt:   p.CreatedTime,
		UpdatedAt:   p.LastEditedTime,
	}
}

func EventFromPage(p notion.Page) Event {
	start, end := p.DateRange(eventDates)
	return Event{
		ID:              p.ID,
		NotionURL:       p.URL,
		Name:            p.Title(eventName),
		Status:          p.Select(eventStatus),
		SetupDate:       p.Date(eventSetup),
		TeardownDate:    p.Date(eventTeardown),
		Phone:           p.Phone(eventPhone),
		Pavilion:        p.MultiSelect(eventPavilion),
		TotalStands:     optionalNumber(p, eventTotal),
		CompletedStands: optionalNumber(p, eventCompleted),
		Priority:        p.Select(eventPriority),
		EventStartDate:  start,
		EventEndDate:    end,
		Venue:           p.Select(eventVenue),
		VenueID:         p.FirstRelation(eventVenueRef),
		CreatedAt:       p.CreatedTime,
		UpdatedAt:       p.LastEditedTime,
	}
}

// numberText renders numeric identifiers (CUIT, project number) without a
// fractional part.
func numberText(p notion.Page, prop string) string {
	n, ok := p.Number(prop)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func optionalNumber(p notion.Page, prop string) *float64 {
	n, ok := p.Number(prop)
	if !ok {
		return nil
	}
	return &n
}
