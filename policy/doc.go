// Package policy defines the static configuration resolved at process
// start: the category table (timeout budget, retry policy, and circuit
// policy per dependency class) and the tool routing table (which
// category and shared circuit each tool name uses).
//
// The built-in tables cover remote GitHub-style APIs (search, content,
// writes), language-server queries (navigation, hierarchy), local
// filesystem search, and package-registry lookups. Numeric budgets and
// routing can be overridden from a file or TOOLGUARD_ environment
// variables via Load; retryable predicates are fixed per category.
package policy
