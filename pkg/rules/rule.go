package rules

import "gopkg.in/yaml.v3"

// LogSource is Sigma's category/product/service triple used to scope a
// rule to the kind of log it was written against. An empty field acts as
// a wildcard on both the rule side and the event side, matching this
// project's upstream LogSource::from/default behavior.
type LogSource struct {
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Product  string `yaml:"product,omitempty" json:"product,omitempty"`
	Service  string `yaml:"service,omitempty" json:"service,omitempty"`
}

// Matches reports whether a rule's LogSource is compatible with an
// event's. A field set on one side but empty on the other is a wildcard
// match; both sides set requires equality.
func (ls LogSource) Matches(other LogSource) bool {
	return fieldMatches(ls.Category, other.Category) &&
		fieldMatches(ls.Product, other.Product) &&
		fieldMatches(ls.Service, other.Service)
}

func fieldMatches(a, b string) bool {
	return a == "" || b == "" || a == b
}

// FilterFromLogsource extracts a LogSource from an event's
// Metadata["logsource"] value, defaulting to the all-wildcard LogSource
// when absent or malformed.
func FilterFromLogsource(v any) LogSource {
	obj, ok := v.(map[string]any)
	if !ok {
		return LogSource{}
	}
	get := func(key string) string {
		s, _ := obj[key].(string)
		return s
	}
	return LogSource{
		Category: get("category"),
		Product:  get("product"),
		Service:  get("service"),
	}
}

// Rule is the input shape for Collection.Add: a parsed Sigma-style YAML
// rule plus the raw bytes it was loaded from, kept around for disk
// persistence when a rule is uploaded through the management API.
type Rule struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Level       string         `yaml:"level" json:"level"`
	LogSource   LogSource      `yaml:"logsource" json:"logsource"`
	Detection   map[string]any `yaml:"detection" json:"detection"`

	Raw []byte `yaml:"-" json:"-"`
}

// ParseRule parses a YAML-encoded Sigma rule body.
func ParseRule(body []byte) (Rule, error) {
	var r Rule
	if err := yaml.Unmarshal(body, &r); err != nil {
		return Rule{}, err
	}
	r.Raw = body
	return r, nil
}

// Descriptor is the full detail of a stored rule, returned by Get — enough
// to render the management API's "get rule" response and to build a
// detection finding's embedded rule metadata.
type Descriptor struct {
	Rule
	Enabled bool `json:"enabled"`
}

// Summary is the reduced shape List returns, matching this project's
// upstream list_rules response: enough to render a rule table without the
// cost of serializing every rule's full detection logic.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	Level       string    `json:"level"`
	LogSource   LogSource `json:"logsource"`
}
