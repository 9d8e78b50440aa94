package cachetier

import (
	"fmt"

	"github.com/svt/orm/internal/rules"
)

// Kind identifies which of spec.md §4.5's eight action kinds a
// Statement lowers, always in the fixed emission order: https
// redirection, trailing slash, synthetic response, redirect, southbound
// headers, request-path rewrite, backend selection, northbound headers.
type Kind string

const (
	KindHTTPSRedirection  Kind = "https_redirection"
	KindTrailingSlash     Kind = "trailing_slash"
	KindSyntheticResponse Kind = "synthetic_response"
	KindRedirect          Kind = "redirect"
	KindHeaderSouthbound  Kind = "header_southbound"
	KindReqPath           Kind = "req_path"
	KindBackend           Kind = "backend"
	KindHeaderNorthbound  Kind = "header_northbound"
)

// Statement is one lowered action.
type Statement struct {
	Kind              Kind
	HeaderOp          *rules.HeaderOp
	ReqPathOp         *rules.ReqPathOp
	TrailingSlash     *rules.TrailingSlash
	SyntheticResponse *ResolvedSynthetic
	Redirect          *ResolvedRedirect
	Backend           *rules.Backend
}

// ResolvedSynthetic carries the synthetic_response body through
// quoteLongString so the template layer receives an already-escaped
// literal (spec.md §6 escape rules).
type ResolvedSynthetic struct {
	Status int
	Body   string // pre-quoted via quoteLongString
}

// ResolvedRedirect is a redirect action with its status code already
// resolved from RedirectType (spec.md §4.5).
type ResolvedRedirect struct {
	Status int
	URL    string // set only when the rule supplied an explicit url
	Scheme string
	Domain string
}

// redirectStatus implements spec.md §4.5's status-code table.
func redirectStatus(t rules.RedirectType) (int, error) {
	switch t {
	case rules.RedirectTemporary:
		return 307, nil
	case rules.RedirectPermanent:
		return 308, nil
	case rules.RedirectTemporaryAllowMethodChange:
		return 302, nil
	case rules.RedirectPermanentAllowMethodChange:
		return 301, nil
	default:
		return 0, fmt.Errorf("cachetier: unknown redirect type %q", t)
	}
}

// Bins is the tri-partition spec.md §4.5 describes: "sb (request-phase
// statements), nb (response-phase statements), synth (synthetic-response
// body emitter)". synthetic_response and redirect both short-circuit
// the request into a synthesized response, so both land in Synth;
// everything that conditions or forwards the request lands in SB, in
// fixed §4.5 order (P6); header_northbound is the only NB member.
type Bins struct {
	SB    []Statement
	Synth []Statement
	NB    []Statement
}

// LowerActions builds a rule's ordered Bins from its parsed Action.
func LowerActions(a rules.Action) (Bins, error) {
	var bins Bins

	if a.HTTPSRedirection != nil && *a.HTTPSRedirection {
		bins.SB = append(bins.SB, Statement{Kind: KindHTTPSRedirection})
	}
	if a.TrailingSlash != nil {
		bins.SB = append(bins.SB, Statement{Kind: KindTrailingSlash, TrailingSlash: a.TrailingSlash})
	}
	if a.SyntheticResponse != nil {
		bins.Synth = append(bins.Synth, Statement{
			Kind: KindSyntheticResponse,
			SyntheticResponse: &ResolvedSynthetic{
				Status: a.SyntheticResponse.Status,
				Body:   quoteLongString(a.SyntheticResponse.Body),
			},
		})
	}
	if a.Redirect != nil {
		status, err := redirectStatus(a.Redirect.Type)
		if err != nil {
			return Bins{}, err
		}
		bins.Synth = append(bins.Synth, Statement{
			Kind: KindRedirect,
			Redirect: &ResolvedRedirect{
				Status: status,
				URL:    a.Redirect.URL,
				Scheme: a.Redirect.Scheme,
				Domain: a.Redirect.Domain,
			},
		})
	}
	for i := range a.HeaderSouthbound {
		bins.SB = append(bins.SB, Statement{Kind: KindHeaderSouthbound, HeaderOp: &a.HeaderSouthbound[i]})
	}
	for i := range a.ReqPath {
		bins.SB = append(bins.SB, Statement{Kind: KindReqPath, ReqPathOp: &a.ReqPath[i]})
	}
	if a.Backend != nil {
		bins.SB = append(bins.SB, Statement{Kind: KindBackend, Backend: a.Backend})
	}
	for i := range a.HeaderNorthbound {
		bins.NB = append(bins.NB, Statement{Kind: KindHeaderNorthbound, HeaderOp: &a.HeaderNorthbound[i]})
	}

	return bins, nil
}

// ResolveScheme implements the "server-port heuristic" spec.md §4.5
// names for a redirect with no explicit scheme: 443 -> https, else
// http.
func ResolveScheme(explicit string, serverPort int) string {
	if explicit != "" {
		return explicit
	}
	if serverPort == 443 {
		return "https"
	}
	return "http"
}
