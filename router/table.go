package router

import (
	"fmt"
	"strings"

	"github.com/idemio/idem-serverless/config"
)

// ExecutionPlan is the ordered triple a matched route resolves to: request
// handlers run first, the terminator produces output, response handlers
// run last. Entries are handler names, resolved against a
// handler.Registry by the caller.
type ExecutionPlan struct {
	RequestHandlers  []string
	Terminator       string
	ResponseHandlers []string
}

// Match is the result of a successful route resolution: the matched plan
// plus path parameters coerced to their declared JSON-shaped types.
type Match struct {
	Plan       ExecutionPlan
	Parameters map[string]any
}

// route is one compiled (method, template) pair.
type route struct {
	method   string
	segments []Segment
	plan     ExecutionPlan
	order    int
}

// ErrRouteNotFound is returned by Table.Match when no route matches the
// given method and path.
var ErrRouteNotFound = fmt.Errorf("router: no route matches")

// Table is the compiled form of an ExecutionFlowConfig: an ordered list of
// candidate routes per declaration order, matched in spec §4.4's
// tie-break sequence.
type Table struct {
	routes []route
}

// Build compiles cfg into a Table. response handler subsets are not
// distinguished in the configuration format; every exec list's last entry
// is the terminator and everything before it is a request handler (spec
// §6). Response handlers are assigned by a caller-supplied classifier,
// since the wire format does not separate them — see BuildWithResponseHandlers.
func Build(cfg *config.ExecutionFlowConfig) (*Table, error) {
	return BuildWithResponseHandlers(cfg, nil)
}

// BuildWithResponseHandlers compiles cfg into a Table, treating any handler
// name present in isResponseHandler as belonging to the response phase
// instead of the request phase. This lets deployments declare, e.g., header
// and traceability handlers as response-phase without a wire-format change.
func BuildWithResponseHandlers(cfg *config.ExecutionFlowConfig, isResponseHandler map[string]bool) (*Table, error) {
	t := &Table{}
	for order, entry := range cfg.Paths.Entries() {
		template, prefix := entry.Template, entry.Config
		segments, err := parseTemplate(template)
		if err != nil {
			return nil, err
		}

		expanded, err := cfg.ExpandExec(prefix.Exec)
		if err != nil {
			return nil, fmt.Errorf("router: path %q: %w", template, err)
		}
		if len(expanded) == 0 {
			return nil, fmt.Errorf("router: path %q: exec list is empty", template)
		}

		terminator := expanded[len(expanded)-1]
		var requestHandlers, responseHandlers []string
		for _, name := range expanded[:len(expanded)-1] {
			if isResponseHandler[name] {
				responseHandlers = append(responseHandlers, name)
			} else {
				requestHandlers = append(requestHandlers, name)
			}
		}

		t.routes = append(t.routes, route{
			method:   strings.ToUpper(prefix.Method),
			segments: segments,
			plan: ExecutionPlan{
				RequestHandlers:  requestHandlers,
				Terminator:       terminator,
				ResponseHandlers: responseHandlers,
			},
			order: order,
		})
	}
	return t, nil
}

// Match resolves (method, path) against the table, applying the spec §4.4
// tie-break rules: method case-insensitive, exact segment count, literals
// beat parameters at the leftmost disagreement, declaration order breaks
// remaining ties.
func (t *Table) Match(method, path string) (*Match, error) {
	pathSegments := strings.Split(strings.Trim(path, "/"), "/")
	if strings.Trim(path, "/") == "" {
		pathSegments = []string{""}
	}
	method = strings.ToUpper(method)

	var best *route
	var bestParams map[string]any
	var bestSpecificity []int

	for i := range t.routes {
		r := &t.routes[i]
		if r.method != method {
			continue
		}
		if len(r.segments) != len(pathSegments) {
			continue
		}

		params := make(map[string]any, len(r.segments))
		specificity := make([]int, len(r.segments))
		matched := true

		for idx, seg := range r.segments {
			actual := pathSegments[idx]
			if !seg.IsParam {
				if seg.Literal != actual {
					matched = false
					break
				}
				specificity[idx] = 1 // literal: more specific
				continue
			}

			value, err := coerce(actual, seg.ParamType)
			if err != nil {
				matched = false
				break
			}
			params[seg.ParamName] = value
			specificity[idx] = 0 // parameter: less specific
		}

		if !matched {
			continue
		}

		if best == nil || moreSpecific(specificity, bestSpecificity) {
			best = r
			bestParams = params
			bestSpecificity = specificity
		}
		// equal specificity: first-seen (declaration order) wins, so no
		// replacement when neither is strictly more specific.
	}

	if best == nil {
		return nil, ErrRouteNotFound
	}

	return &Match{Plan: best.plan, Parameters: bestParams}, nil
}

// moreSpecific reports whether a beats b under "literals beat parameters
// at the leftmost disagreement".
func moreSpecific(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
