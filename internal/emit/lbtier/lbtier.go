// Package lbtier is the load-balancer back-end of the Config Emitter
// (spec.md §4.5): it consumes only backend actions, routing on the
// X-ORM-ID header the cache tier sets, and lowers Globals into the
// LB-wide sections (certificates, nameservers, internal ACLs,
// healthcheck, bind addresses).
package lbtier

import (
	"fmt"

	"github.com/svt/orm/internal/globals"
	"github.com/svt/orm/internal/rules"
)

// RouteACL is one ACL entry routing requests whose X-ORM-ID header
// equals RuleID to BackendName.
type RouteACL struct {
	RuleID      string
	BackendName string
}

// Scheme is a backend's transport. SchemeHTTPSNoVerify documents spec.md
// §4.5's "https (TLS without peer verification, TODO hardening)".
type Scheme string

const (
	SchemeHTTP      Scheme = "http"
	SchemeHTTPSNoVerify Scheme = "https"
)

// Server is one origin line within a backend section.
type Server struct {
	Address              string
	MaxConnections        int
	MaxQueuedConnections int
}

// BackendSection is one named backend with its server pool.
type BackendSection struct {
	Name    string
	Scheme  Scheme
	Servers []Server
}

// Config is the complete LB-tier artifact: routing + backend sections
// plus the globals-derived sections (spec.md §4.5 "Globals lower
// into...").
type Config struct {
	Routes       []RouteACL
	Backends     []BackendSection
	Certificates []globals.Certificate
	Nameservers  []string // each resolved to host:port, ":53" default applied
	InternalACLs []string
	Healthcheck  ResolvedHealthcheck
	BindAddresses []globals.BindAddress
}

// ResolvedHealthcheck is the custom internal healthcheck after
// applying the original implementation's default (spec.md §4 supplement,
// original_source/orm/renderhaproxy.py): "GET /" when Globals doesn't
// declare one.
type ResolvedHealthcheck struct {
	Method string
	Path   string
	Host   string
}

// Build lowers one set of domain rule lists (already collision-checked)
// and the Globals singleton into the LB-tier Config.
func Build(byDomain map[string][]*rules.Rule, g *globals.Globals) (*Config, error) {
	cfg := &Config{
		Certificates:  g.Certificates,
		BindAddresses: g.FrontendAddresses,
		Healthcheck:   resolveHealthcheck(g.CustomHealthcheck),
	}

	for _, ns := range g.Nameservers {
		cfg.Nameservers = append(cfg.Nameservers, resolveNameserver(ns))
	}
	cfg.InternalACLs = append(cfg.InternalACLs, g.InternalNetworks...)

	seenBackend := make(map[string]bool)
	for _, list := range byDomain {
		for _, r := range list {
			if r.Actions.Backend == nil {
				continue
			}
			b := r.Actions.Backend
			scheme, err := resolveScheme(b.Scheme)
			if err != nil {
				return nil, fmt.Errorf("lbtier: rule %q: %w", r.RuleID, err)
			}

			cfg.Routes = append(cfg.Routes, RouteACL{RuleID: r.RuleID, BackendName: b.Name})

			if seenBackend[b.Name] {
				continue
			}
			seenBackend[b.Name] = true

			section := BackendSection{Name: b.Name, Scheme: scheme}
			for _, origin := range b.Origins {
				section.Servers = append(section.Servers, Server{
					Address:              origin,
					MaxConnections:        b.MaxConnections,
					MaxQueuedConnections:  b.MaxQueuedConnections,
				})
			}
			cfg.Backends = append(cfg.Backends, section)
		}
	}

	return cfg, nil
}

func resolveScheme(s string) (Scheme, error) {
	switch s {
	case string(SchemeHTTP):
		return SchemeHTTP, nil
	case string(SchemeHTTPSNoVerify):
		return SchemeHTTPSNoVerify, nil
	default:
		return "", fmt.Errorf("unknown origin scheme %q", s)
	}
}

// resolveNameserver appends the default port (spec.md §6: "`:53`
// default on bare nameservers", original_source/orm/rendervarnish.py).
func resolveNameserver(ns globals.Nameserver) string {
	if ns.Port != 0 {
		return fmt.Sprintf("%s:%d", ns.Host, ns.Port)
	}
	return ns.Host + ":53"
}

func resolveHealthcheck(hc *globals.Healthcheck) ResolvedHealthcheck {
	if hc == nil {
		return ResolvedHealthcheck{Method: "GET", Path: "/"}
	}
	return ResolvedHealthcheck{Method: hc.Method, Path: hc.Path, Host: hc.Host}
}
