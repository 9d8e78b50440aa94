package rules

import (
	"fmt"
	"io"

	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/model"
	"gopkg.in/yaml.v3"
)

// ParseDocuments decodes every YAML document in r (gopkg.in/yaml.v3's
// Decoder.Decode loop is what gives us the "multi-document YAML stream"
// support spec.md §6 delegates to the YAML library) and lowers each
// into a *Document. sourceFile is stamped onto every rule and test for
// provenance (spec.md §3).
func ParseDocuments(r io.Reader, sourceFile string, report *diag.Report) []*Document {
	dec := yaml.NewDecoder(r)

	var docs []*Document
	for i := 0; ; i++ {
		var raw yamlDocument
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Fatal(diag.KindInput, diag.Location{File: sourceFile}, "yaml decode error (document %d): %v", i, err)
			return docs
		}
		doc := lowerDocument(raw, sourceFile, report)
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

func lowerDocument(raw yamlDocument, sourceFile string, report *diag.Report) *Document {
	version := raw.SchemaVersion
	if version == 0 {
		version = 1
	}
	if version != 1 {
		report.Fatal(diag.KindInput, diag.Location{File: sourceFile}, "unsupported schema_version %d (only version 1 is defined)", version)
		return nil
	}

	doc := &Document{
		SchemaVersion: version,
		SourceFile:    sourceFile,
		ByDomain:      make(map[string][]*rawRule),
	}

	for _, yr := range raw.Rules {
		rr, err := lowerRule(yr)
		if err != nil {
			report.Fatal(diag.KindInput, diag.Location{File: sourceFile, Field: yr.Description}, "%v", err)
			continue
		}
		for _, d := range rr.Domains {
			doc.ByDomain[d] = append(doc.ByDomain[d], rr)
		}
	}

	for _, yt := range raw.Tests {
		doc.Tests = append(doc.Tests, lowerTest(yt, sourceFile))
	}

	return doc
}

// lowerRule implements spec.md §4.2's match-shorthand lowering steps
// 1-6: wrap domains as an or of domain-exact leaves, lower matches into
// a canonical boolean tree, AND the two together, then minify.
func lowerRule(yr yamlRule) (*rawRule, error) {
	if len(yr.Domains) == 0 {
		return nil, fmt.Errorf("rule %q: domains must be non-empty", yr.Description)
	}

	domainLeaves := make([]*model.Tree, len(yr.Domains))
	for i, d := range yr.Domains {
		domainLeaves[i] = model.Match(model.SourceDomain, model.FuncExact, model.Input{Value: d})
	}
	domainsOr := model.Any(domainLeaves...) // step 1

	matchesTree, err := lowerMatches(yr.Matches) // step 2-5
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", yr.Description, err)
	}

	combined := model.All(domainsOr, matchesTree) // step 6
	minified := model.Minify(combined)

	domainDefault := false
	if yr.DomainDefault != nil {
		if !*yr.DomainDefault {
			return nil, fmt.Errorf("rule %q: domain_default: false is forbidden (only truthy or absent)", yr.Description)
		}
		domainDefault = true
	}

	return &rawRule{
		Description:   yr.Description,
		Domains:       yr.Domains,
		Matches:       minified,
		DomainDefault: domainDefault,
		Actions:       lowerActions(yr.Actions),
	}, nil
}

// lowerMatches implements spec.md §4.2 steps 2 and 5: the top level
// must contain all and/or any keys mapping to lists of clauses; combine
// at the top as and/or respectively. A document with both all and any
// combines the two condition lists with and (each maps to a Condition
// node; the step 6 outer wrapper combines matches with the domain
// clause, not here).
func lowerMatches(m yamlMatches) (*model.Tree, error) {
	if len(m.All) == 0 && len(m.Any) == 0 {
		return nil, fmt.Errorf("matches must contain all and/or any")
	}

	var parts []*model.Tree
	if len(m.All) > 0 {
		children, err := lowerClauses(m.All)
		if err != nil {
			return nil, err
		}
		parts = append(parts, model.All(children...))
	}
	if len(m.Any) > 0 {
		children, err := lowerClauses(m.Any)
		if err != nil {
			return nil, err
		}
		parts = append(parts, model.Any(children...))
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return model.All(parts...), nil
}

func lowerClauses(clauses []yamlClause) ([]*model.Tree, error) {
	out := make([]*model.Tree, 0, len(clauses))
	for _, c := range clauses {
		t, err := lowerClause(c)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func lowerClause(c yamlClause) (*model.Tree, error) {
	switch {
	case c.Paths != nil && c.Query != nil:
		return nil, fmt.Errorf("clause must be exactly one of {paths, query}, got both")
	case c.Paths != nil:
		return lowerPaths(*c.Paths)
	case c.Query != nil:
		return lowerQuery(*c.Query)
	default:
		return nil, fmt.Errorf("clause must be one of {paths, query}")
	}
}

// pathFunctionLists pairs each supported path function key with its
// values, in the order spec.md §3's path function table lists them.
// The collision engine's path-leaf projection does not call it; it
// keeps its own switch over the same function set.
func pathFunctionLists(p yamlPaths) []struct {
	fn     model.Function
	values []string
} {
	return []struct {
		fn     model.Function
		values []string
	}{
		{model.FuncExact, p.Exact},
		{model.FuncRegex, p.Regex},
		{model.FuncBeginsWith, p.BeginsWith},
		{model.FuncEndsWith, p.EndsWith},
		{model.FuncContains, p.Contains},
	}
}

// lowerPaths implements spec.md §4.2 step 3.
func lowerPaths(p yamlPaths) (*model.Tree, error) {
	var leaves []*model.Tree
	for _, fl := range pathFunctionLists(p) {
		for _, v := range fl.values {
			leaves = append(leaves, model.Match(model.SourcePath, fl.fn, model.Input{Value: v, IgnoreCase: p.IgnoreCase}))
		}
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("paths clause has no recognized function key (expected one of exact, regex, begins_with, ends_with, contains)")
	}
	tree := model.Any(leaves...)
	if p.Not {
		tree = model.Not(tree)
	}
	return tree, nil
}

// lowerQuery implements spec.md §4.2 step 4: same shape as paths, plus
// Parameter propagated into every leaf's input, plus the exist
// function which consumes only the parameter.
func lowerQuery(q yamlQuery) (*model.Tree, error) {
	if q.Parameter == "" {
		return nil, fmt.Errorf("query clause missing required 'parameter' field")
	}

	var leaves []*model.Tree
	if q.Exist != nil && *q.Exist {
		leaves = append(leaves, model.Match(model.SourceQuery, model.FuncExist, model.Input{Parameter: q.Parameter}))
	}
	for _, fl := range []struct {
		fn     model.Function
		values []string
	}{
		{model.FuncExact, q.Exact},
		{model.FuncRegex, q.Regex},
		{model.FuncBeginsWith, q.BeginsWith},
		{model.FuncEndsWith, q.EndsWith},
		{model.FuncContains, q.Contains},
	} {
		for _, v := range fl.values {
			leaves = append(leaves, model.Match(model.SourceQuery, fl.fn, model.Input{
				Parameter:  q.Parameter,
				Value:      v,
				IgnoreCase: q.IgnoreCase,
			}))
		}
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("query clause on parameter %q has no recognized function key", q.Parameter)
	}
	tree := model.Any(leaves...)
	if q.Not {
		tree = model.Not(tree)
	}
	return tree, nil
}

func lowerActions(a yamlActions) Action {
	return Action{
		HTTPSRedirection:  a.HTTPSRedirection,
		TrailingSlash:     a.TrailingSlash,
		SyntheticResponse: a.SyntheticResponse,
		Redirect:          a.Redirect,
		HeaderSouthbound:  a.HeaderSouthbound,
		ReqPath:           a.ReqPath,
		Backend:           a.Backend,
		HeaderNorthbound:  a.HeaderNorthbound,
	}
}

func lowerTest(yt yamlTest, sourceFile string) Test {
	test := Test{
		Name:       yt.Name,
		SourceFile: sourceFile,
		Request:    TestRequest{URL: yt.Request.URL},
		Expect: TestExpect{
			Status: yt.Expect.Status,
		},
	}
	for _, b := range yt.Expect.Body {
		test.Expect.Body = append(test.Expect.Body, RegexAssertion{Regex: b.Regex})
	}
	for _, h := range yt.Expect.Headers {
		test.Expect.Headers = append(test.Expect.Headers, HeaderAssertion{Field: h.Field, Regex: h.Regex})
	}
	return test
}
