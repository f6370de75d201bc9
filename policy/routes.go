package policy

// Route maps a tool name to the category whose budgets it uses and the
// circuit it shares. Several tools routing to one circuit share fate:
// any of them failing opens the circuit for all of them.
type Route struct {
	Category Category
	Circuit  string
}

// The shared circuit names used by the default routes.
const (
	CircuitGitHubSearch    = "github-search"
	CircuitGitHubContent   = "github-content"
	CircuitGitHubWrites    = "github-writes"
	CircuitLSPNavigation   = "lsp-navigation"
	CircuitLSPHierarchy    = "lsp-hierarchy"
	CircuitLocalFS         = "local-fs"
	CircuitPackageRegistry = "package-registry"
)

// DefaultRoutes returns the built-in tool routing table. Tool families
// share a circuit per backing dependency: all code-search tools fail
// together when the search API is down, without affecting content reads
// or the language server.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		// Remote search APIs.
		"search_code":   {Category: CategoryRemoteSearch, Circuit: CircuitGitHubSearch},
		"search_repos":  {Category: CategoryRemoteSearch, Circuit: CircuitGitHubSearch},
		"search_issues": {Category: CategoryRemoteSearch, Circuit: CircuitGitHubSearch},

		// Remote content reads.
		"get_file":      {Category: CategoryRemoteContent, Circuit: CircuitGitHubContent},
		"get_tree":      {Category: CategoryRemoteContent, Circuit: CircuitGitHubContent},
		"get_commit":    {Category: CategoryRemoteContent, Circuit: CircuitGitHubContent},
		"list_branches": {Category: CategoryRemoteContent, Circuit: CircuitGitHubContent},

		// Remote writes and pull requests.
		"create_branch": {Category: CategoryRemoteWrites, Circuit: CircuitGitHubWrites},
		"push_files":    {Category: CategoryRemoteWrites, Circuit: CircuitGitHubWrites},
		"create_pr":     {Category: CategoryRemoteWrites, Circuit: CircuitGitHubWrites},
		"add_comment":   {Category: CategoryRemoteWrites, Circuit: CircuitGitHubWrites},

		// Language-server navigation.
		"goto_definition":  {Category: CategoryLSPNavigation, Circuit: CircuitLSPNavigation},
		"find_references":  {Category: CategoryLSPNavigation, Circuit: CircuitLSPNavigation},
		"hover":            {Category: CategoryLSPNavigation, Circuit: CircuitLSPNavigation},
		"document_symbols": {Category: CategoryLSPNavigation, Circuit: CircuitLSPNavigation},

		// Language-server hierarchy queries.
		"call_hierarchy": {Category: CategoryLSPHierarchy, Circuit: CircuitLSPHierarchy},
		"type_hierarchy": {Category: CategoryLSPHierarchy, Circuit: CircuitLSPHierarchy},

		// Local filesystem search.
		"grep_files": {Category: CategoryLocalFS, Circuit: CircuitLocalFS},
		"glob_files": {Category: CategoryLocalFS, Circuit: CircuitLocalFS},
		"read_file":  {Category: CategoryLocalFS, Circuit: CircuitLocalFS},

		// Package-registry lookups.
		"package_info":   {Category: CategoryPackageLookup, Circuit: CircuitPackageRegistry},
		"package_readme": {Category: CategoryPackageLookup, Circuit: CircuitPackageRegistry},
	}
}

// Table bundles the category configs and tool routes resolved at
// process start. It is immutable once built.
type Table struct {
	categories map[Category]CategoryConfig
	routes     map[string]Route
}

// NewTable builds a table from explicit categories and routes. Nil maps
// fall back to the defaults.
func NewTable(categories map[Category]CategoryConfig, routes map[string]Route) *Table {
	if categories == nil {
		categories = Defaults()
	}
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Table{categories: categories, routes: routes}
}

// DefaultTable returns the table of built-in categories and routes.
func DefaultTable() *Table {
	return NewTable(nil, nil)
}

// Route resolves a tool name to its route.
func (t *Table) Route(tool string) (Route, bool) {
	r, ok := t.routes[tool]
	return r, ok
}

// Config resolves a category to its configuration.
func (t *Table) Config(category Category) (CategoryConfig, bool) {
	c, ok := t.categories[category]
	return c, ok
}

// Tools returns the number of routed tools.
func (t *Table) Tools() int {
	return len(t.routes)
}
