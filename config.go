package adhandler

/*
config.go implements construction-time validation per §4.6, following
the teacher's assert-don't-parse idiom (no config file format; the
embedding application populates a plain struct, matching §1's Non-goal
"CLI entry points... excluded"). Grounded loosely on smarzola/ldaplite's
pkg/config/config.go (explicit typed config struct, explicit validation
function), without adopting its env-var loader, since process-environment
parsing is outside this core's scope.
*/

// bootstrapOnlyAttrs are the three attributes the schema self-search
// itself reads (§4.4); a caller override can never apply to them.
var bootstrapOnlyAttrs = map[string]bool{
	"lDAPDisplayName": true,
	"attributeSyntax": true,
	"isSingleValued":  true,
}

// Config is the handler's construction-time configuration (§4.6).
type Config struct {
	DomainBaseDN                       string
	SchemaConfigBaseDN                  string
	ClientSideTransitiveSearchBaseDN    string
	ClientSideTransitiveSearchDefault   bool
	URL, User, Password                string
	Log                                 Logger
	OverrideSingleValued                map[string]bool
	ConnFactory                         ConnFactory
}

func (c *Config) validate() error {
	if c.DomainBaseDN == "" {
		return &ConfigError{Option: "domainBaseDN", Message: "must not be empty"}
	}
	if c.SchemaConfigBaseDN == "" {
		return &ConfigError{Option: "schemaConfigBaseDN", Message: "must not be empty"}
	}
	if c.URL == "" {
		return &ConfigError{Option: "url", Message: "must not be empty"}
	}
	if c.User == "" {
		return &ConfigError{Option: "user", Message: "must not be empty"}
	}
	for attr := range c.OverrideSingleValued {
		if bootstrapOnlyAttrs[attr] {
			return &ConfigError{Option: "overrideSingleValued", Message: "attribute \"" + attr + "\" is bootstrap-only and may not be overridden"}
		}
	}
	if c.ClientSideTransitiveSearchBaseDN == "" {
		c.ClientSideTransitiveSearchBaseDN = c.DomainBaseDN
	}
	if c.Log == nil {
		c.Log = NopLogger{}
	}
	if c.ConnFactory == nil {
		c.ConnFactory = GoLDAPConnFactory{}
	}
	return nil
}

// knownOptions and the old-name rejection below exist for
// NewHandlerFromOptions, the dynamic entry point described in §4.6
// ("any unknown option is an error", "using the old name isSingleValued
// ... is an explicit error"). A typed Config struct has no runtime
// notion of an unknown field, so that check only makes sense against a
// dynamic option map.
var knownOptions = map[string]bool{
	"domainBaseDN":                      true,
	"schemaConfigBaseDN":                true,
	"clientSideTransitiveSearchBaseDN":  true,
	"clientSideTransitiveSearchDefault": true,
	"url":                   true,
	"user":                  true,
	"password":              true,
	"log":                   true,
	"overrideSingleValued":  true,
}

// NewHandlerFromOptions builds a Handler from a dynamic option map, the
// shape most naturally reached for by a caller migrating an existing
// option bag. This is where the unknown-option and old-option-name
// checks of §4.6 apply.
func NewHandlerFromOptions(opts map[string]any) (*Handler, error) {
	if _, ok := opts["isSingleValued"]; ok {
		return nil, &ConfigError{Option: "isSingleValued", Message: "renamed to overrideSingleValued"}
	}
	for k := range opts {
		if !knownOptions[k] {
			return nil, &ConfigError{Option: k, Message: "unknown configuration option"}
		}
	}

	cfg := Config{}
	if v, ok := opts["domainBaseDN"].(string); ok {
		cfg.DomainBaseDN = v
	}
	if v, ok := opts["schemaConfigBaseDN"].(string); ok {
		cfg.SchemaConfigBaseDN = v
	}
	if v, ok := opts["clientSideTransitiveSearchBaseDN"].(string); ok {
		cfg.ClientSideTransitiveSearchBaseDN = v
	}
	if v, ok := opts["clientSideTransitiveSearchDefault"].(bool); ok {
		cfg.ClientSideTransitiveSearchDefault = v
	}
	if v, ok := opts["url"].(string); ok {
		cfg.URL = v
	}
	if v, ok := opts["user"].(string); ok {
		cfg.User = v
	}
	if v, ok := opts["password"].(string); ok {
		cfg.Password = v
	}
	if v, ok := opts["log"].(Logger); ok {
		cfg.Log = v
	}
	if v, ok := opts["overrideSingleValued"].(map[string]bool); ok {
		cfg.OverrideSingleValued = v
	}

	return NewHandler(cfg)
}
