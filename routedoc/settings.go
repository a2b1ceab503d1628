package routedoc

import "log/slog"

// DefaultJSONPath is where the document is served relative to its mount point.
const DefaultJSONPath = "/openapi.json"

// Settings configure one document build.
type Settings struct {
	// JSONPath is the path the JSON document is served at.
	JSONPath string
	// InlineSchemas disables components: every schema is written in place.
	InlineSchemas bool
	// Types describes types that do not implement the documenter interfaces.
	Types *TypeRegistry
	// Logger receives debug output about skipped handlers and merges.
	Logger *slog.Logger
}

// NewSettings returns settings with the default JSON path, the built-in type
// registry and a discarding logger.
func NewSettings() *Settings {
	return &Settings{
		JSONPath: DefaultJSONPath,
		Types:    NewTypeRegistry(),
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func (s *Settings) withDefaults() *Settings {
	out := *s
	if out.JSONPath == "" {
		out.JSONPath = DefaultJSONPath
	}
	if out.Types == nil {
		out.Types = NewTypeRegistry()
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return &out
}
