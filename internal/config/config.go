package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".routedoc.yaml"

// RouteSet groups handlers into one generated document.
type RouteSet struct {
	Name string `yaml:"name"`
	// Handlers lists handler function names. Empty means every annotated
	// handler in the package.
	Handlers []string `yaml:"handlers"`
}

// Config is the contents of .routedoc.yaml merged over the defaults.
type Config struct {
	Info            *openapi3.Info         `yaml:"info"`
	Output          string                 `yaml:"output"`
	Directive       string                 `yaml:"directive"`
	JSONPath        string                 `yaml:"jsonPath"`
	SecuritySchemes map[string]interface{} `yaml:"securitySchemes"`
	RouteSets       []RouteSet             `yaml:"routeSets"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Info:            &openapi3.Info{Title: "API Documentation", Version: "1.0.0"},
		Output:          "routedoc_gen.go",
		Directive:       "routedoc",
		JSONPath:        "/openapi.json",
		SecuritySchemes: make(map[string]any),
		RouteSets:       []RouteSet{{Name: "API"}},
	}
}

// Load reads .routedoc.yaml from projectPath. A missing file yields the
// defaults.
func Load(projectPath string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(configPath)
	if err == nil {
		if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, unmarshalErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Info == nil {
		c.Info = Default().Info
	}
	if c.Directive == "" {
		c.Directive = "routedoc"
	}
	if len(c.RouteSets) == 0 {
		c.RouteSets = []RouteSet{{Name: "API"}}
	}
	seen := make(map[string]bool, len(c.RouteSets))
	for i, set := range c.RouteSets {
		if set.Name == "" {
			return fmt.Errorf("routeSets[%d] has no name", i)
		}
		if seen[set.Name] {
			return fmt.Errorf("duplicate route set %q", set.Name)
		}
		seen[set.Name] = true
	}
	return nil
}

// Schemes converts the loosely typed securitySchemes section into OpenAPI
// security schemes. Entries that are not mappings are skipped.
func (c *Config) Schemes() openapi3.SecuritySchemes {
	sanitized := make(openapi3.SecuritySchemes)
	for key, val := range c.SecuritySchemes {
		schemeMap, ok := val.(map[string]interface{})
		if !ok {
			continue
		}

		scheme := &openapi3.SecurityScheme{}
		if t, ok := schemeMap["type"].(string); ok {
			scheme.Type = t
		}
		if d, ok := schemeMap["description"].(string); ok {
			scheme.Description = d
		}
		if s, ok := schemeMap["scheme"].(string); ok {
			scheme.Scheme = s
		}
		if bf, ok := schemeMap["bearerFormat"].(string); ok {
			scheme.BearerFormat = bf
		}
		if in, ok := schemeMap["in"].(string); ok {
			scheme.In = in
		}
		if name, ok := schemeMap["name"].(string); ok {
			scheme.Name = name
		}
		if u, ok := schemeMap["openIdConnectUrl"].(string); ok {
			scheme.OpenIdConnectUrl = u
		}
		if flows, ok := schemeMap["flows"].(map[string]interface{}); ok {
			scheme.Flows = &openapi3.OAuthFlows{
				Implicit:          oauthFlow(flows["implicit"]),
				Password:          oauthFlow(flows["password"]),
				ClientCredentials: oauthFlow(flows["clientCredentials"]),
				AuthorizationCode: oauthFlow(flows["authorizationCode"]),
			}
		}

		sanitized[key] = &openapi3.SecuritySchemeRef{Value: scheme}
	}
	return sanitized
}

func oauthFlow(v interface{}) *openapi3.OAuthFlow {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	flow := &openapi3.OAuthFlow{Scopes: make(openapi3.StringMap)}
	flow.AuthorizationURL, _ = m["authorizationUrl"].(string)
	flow.TokenURL, _ = m["tokenUrl"].(string)
	flow.RefreshURL, _ = m["refreshUrl"].(string)
	if scopes, ok := m["scopes"].(map[string]interface{}); ok {
		for name, desc := range scopes {
			if desc == nil {
				desc = ""
			}
			flow.Scopes[name] = fmt.Sprint(desc)
		}
	}
	return flow
}

// SchemeNames returns the configured security scheme names in sorted order.
func (c *Config) SchemeNames() []string {
	schemes := c.Schemes()
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
