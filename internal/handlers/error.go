package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*
var templatesFS embed.FS

// ErrorPageHandler renders the login failure page. The code arrives in the
// query string from RedirectError or verbatim from the provider.
type ErrorPageHandler struct {
	logger   *slog.Logger
	template *template.Template
}

func NewErrorPageHandler(logger *slog.Logger) (*ErrorPageHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/error.html")
	if err != nil {
		return nil, err
	}

	return &ErrorPageHandler{
		logger:   logger,
		template: tmpl,
	}, nil
}

type ErrorPageData struct {
	Code        string
	Description string
}

func (h *ErrorPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")
	if code == "" {
		code = "unknown_error"
	}

	data := ErrorPageData{
		Code:        code,
		Description: r.URL.Query().Get("error_description"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		h.logger.Error("failed to render error page", "error", err)
	}
}
