package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/pixelloop/studio/internal/models"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// pageTemplates is the parsed set of all page templates.
var pageTemplates = mustParseTemplates()

func mustParseTemplates() *template.Template {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic("parse templates: " + err.Error())
	}
	return t
}

// indexData feeds the studio page template.
type indexData struct {
	Styles       []models.Style
	AspectRatios []models.AspectRatio
	APIToken     string
	GalleryOn    bool
}

// Index handles GET / — the studio page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Styles:       models.Styles(),
		AspectRatios: models.SelectableAspectRatios(),
		APIToken:     h.apiToken,
		GalleryOn:    h.gallery != nil,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "index", data); err != nil {
		log.Error().Err(err).Msg("Failed to render index page")
	}
}
