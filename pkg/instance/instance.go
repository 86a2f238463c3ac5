package instance

import (
	"os"

	"github.com/mepex/cotizador-backend/pkg/env"
)

// GetID identifies this process in logs: COTIZADOR_INSTANCE_ID, then the
// platform dyno name, then the hostname.
func GetID() string {
	if id := env.Get("COTIZADOR_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
