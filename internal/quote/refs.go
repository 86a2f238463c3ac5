package quote

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LooseString accepts a JSON string or number; workspace numeric columns
// (CUIT, project number) arrive as either.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*s = LooseString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*s = LooseString(n.String())
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

type ClientRef struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Company  string      `json:"company,omitempty"`
	CUIT     LooseString `json:"cuit,omitempty"`
	Email    string      `json:"email,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	Industry string      `json:"industry,omitempty"`
}

type ProjectRef struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Number LooseString `json:"number,omitempty"`
	Status string      `json:"status,omitempty"`
	Area   string      `json:"area,omitempty"`
}

type EventRef struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	SetupDate      string   `json:"setupDate,omitempty"`
	TeardownDate   string   `json:"teardownDate,omitempty"`
	EventStartDate string   `json:"eventStartDate,omitempty"`
	EventEndDate   string   `json:"eventEndDate,omitempty"`
	Venue          string   `json:"venue,omitempty"`
	Pavilion       []string `json:"pavilion,omitempty"`
	Status         string   `json:"status,omitempty"`
}
