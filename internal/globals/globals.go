// Package globals models the per-deployment Globals singleton (spec.md
// §3) as an explicit configuration record — "defaults live in one
// table, not scattered at read sites" (spec.md §9) — validated with
// github.com/go-playground/validator/v10 the way the teacher validates
// its own service configuration structs.
package globals

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Certificate is one TLS certificate/key pair the cache tier terminates
// for.
type Certificate struct {
	Domain   string `yaml:"domain" validate:"required,hostname_port|hostname"`
	CertFile string `yaml:"cert_file" validate:"required"`
	KeyFile  string `yaml:"key_file" validate:"required"`
}

// Nameserver is a DNS resolver entry; spec.md §6 documents that a bare
// host defaults to port 53 — lowering that default lives in
// internal/emit/lbtier, not here, so Globals stays a faithful record of
// what was declared.
type Nameserver struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

// Healthcheck is the custom internal healthcheck the LB tier issues
// against each backend (spec.md §3, §4.5).
type Healthcheck struct {
	Method string `yaml:"method" validate:"required,oneof=GET HEAD POST"`
	Path   string `yaml:"path" validate:"required"`
	Host   string `yaml:"host,omitempty"`
}

// BindAddress is a front-end or cross-service listen address (spec.md
// §3 "front-end addresses" / §4.5 "cross-service bind addresses").
type BindAddress struct {
	Name    string `yaml:"name" validate:"required"`
	Address string `yaml:"address" validate:"required,hostname_port"`
}

// Defaults bundles the per-rule defaults applied during rule parsing
// (spec.md §3: "currently: https_redirection: bool").
type Defaults struct {
	HTTPSRedirection bool `yaml:"https_redirection"`
}

// Globals is the per-deployment singleton (spec.md §3).
type Globals struct {
	Certificates       []Certificate `yaml:"certificates" validate:"dive"`
	Nameservers        []Nameserver  `yaml:"nameservers" validate:"required,min=1,dive"`
	InternalNetworks   []string      `yaml:"internal_networks" validate:"dive,cidrv4|cidrv6"`
	FrontendAddresses  []BindAddress `yaml:"frontend_addresses" validate:"dive"`
	WorkerIdentities   []string      `yaml:"worker_identities"`
	CustomHealthcheck  *Healthcheck  `yaml:"custom_healthcheck,omitempty"`
	GlobalActions      GlobalActions `yaml:"global_actions"`
	Defaults           Defaults      `yaml:"defaults"`
}

// GlobalActions are applied outside any rule's match, to every request
// or every response (spec.md §3, §4.5).
type GlobalActions struct {
	Southbound []HeaderOp `yaml:"southbound"`
	Northbound []HeaderOp `yaml:"northbound"`
}

// HeaderOp mirrors rules.HeaderOp; duplicated rather than imported to
// keep globals free of a dependency on the rules package — Globals is
// parsed before any rule file and must not need rules' YAML shapes.
type HeaderOp struct {
	Op    string `yaml:"op" validate:"required,oneof=set add remove"`
	Name  string `yaml:"name" validate:"required"`
	Value string `yaml:"value,omitempty"`
}

// Parse decodes and validates a single Globals YAML document.
func Parse(data []byte) (*Globals, error) {
	var g Globals
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("globals: yaml decode: %w", err)
	}
	if err := validateGlobals(&g); err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}
	return &g, nil
}

var validate = validator.New()

func validateGlobals(g *Globals) error {
	return validate.Struct(g)
}
