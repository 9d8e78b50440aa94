package rules

import "github.com/svt/orm/internal/model"

// This file holds the YAML-facing shapes decoded directly by
// gopkg.in/yaml.v3 — the shorthand surface of spec.md §3/§4.2, before
// lowering into model.Tree. Keeping them separate from the canonical
// Rule/Action types (types.go) means a shorthand-surface change never
// ripples into the IR the collision engine and emitters consume.

// yamlDocument is the top-level shape of one YAML document (spec.md
// §4.2: "A v1 document has rules: [...] and optional tests: [...]").
type yamlDocument struct {
	SchemaVersion int           `yaml:"schema_version"`
	Rules         []yamlRule    `yaml:"rules"`
	Tests         []yamlTest    `yaml:"tests"`
}

type yamlRule struct {
	Description   string       `yaml:"description"`
	Domains       []string     `yaml:"domains"`
	Matches       yamlMatches  `yaml:"matches"`
	DomainDefault *bool        `yaml:"domain_default"`
	Actions       yamlActions  `yaml:"actions"`
}

// yamlMatches is the top-level matches object: spec.md §4.2 rule 2
// requires at least one of all/any.
type yamlMatches struct {
	All []yamlClause `yaml:"all"`
	Any []yamlClause `yaml:"any"`
}

// yamlClause is either {paths: {...}} or {query: {...}} (spec.md §4.2
// rule 2). Both fields are optional in the YAML node; exactly one must
// be set, enforced during lowering.
type yamlClause struct {
	Paths *yamlPaths `yaml:"paths"`
	Query *yamlQuery `yaml:"query"`
}

// yamlPaths mirrors spec.md §3's path function table.
type yamlPaths struct {
	Exact      []string `yaml:"exact"`
	Regex      []string `yaml:"regex"`
	BeginsWith []string `yaml:"begins_with"`
	EndsWith   []string `yaml:"ends_with"`
	Contains   []string `yaml:"contains"`
	IgnoreCase bool     `yaml:"ignore_case"`
	Not        bool     `yaml:"not"`
}

// yamlQuery mirrors spec.md §3's query function table, plus Exist and
// the required Parameter field.
type yamlQuery struct {
	Parameter  string   `yaml:"parameter"`
	Exist      *bool    `yaml:"exist"`
	Exact      []string `yaml:"exact"`
	Regex      []string `yaml:"regex"`
	BeginsWith []string `yaml:"begins_with"`
	EndsWith   []string `yaml:"ends_with"`
	Contains   []string `yaml:"contains"`
	IgnoreCase bool     `yaml:"ignore_case"`
	Not        bool     `yaml:"not"`
}

type yamlActions struct {
	HTTPSRedirection  *bool                  `yaml:"https_redirection"`
	TrailingSlash     *TrailingSlash         `yaml:"trailing_slash"`
	SyntheticResponse *SyntheticResponse     `yaml:"synthetic_response"`
	Redirect          *Redirect              `yaml:"redirect"`
	HeaderSouthbound  []HeaderOp             `yaml:"header_southbound"`
	ReqPath           []ReqPathOp            `yaml:"req_path"`
	Backend           *Backend               `yaml:"backend"`
	HeaderNorthbound  []HeaderOp             `yaml:"header_northbound"`
}

type yamlTest struct {
	Name    string        `yaml:"name"`
	Request yamlTestReq   `yaml:"request"`
	Expect  yamlTestExpect `yaml:"expect"`
}

type yamlTestReq struct {
	URL string `yaml:"url"`
}

type yamlTestExpect struct {
	Status  *int                 `yaml:"status"`
	Body    []yamlRegexAssertion `yaml:"body"`
	Headers []yamlHeaderAssertion `yaml:"headers"`
}

type yamlRegexAssertion struct {
	Regex string `yaml:"regex"`
}

type yamlHeaderAssertion struct {
	Field string `yaml:"field"`
	Regex string `yaml:"regex"`
}

// rawRule is a yamlRule that has survived shorthand lowering: Matches is
// now a canonical, minified model.Tree, everything else carried as-is
// pending identity assignment and default application in Merge/
// ApplyDefaults.
type rawRule struct {
	Description   string
	Domains       []string
	Matches       *model.Tree
	DomainDefault bool
	Actions       Action
}
