/*
Package operation implements the templating passes and the bootstrap flow.

	+-------------+      +-------------+
	|   Content   |      |    Paths    |
	| (rewriter)  |      | (rewriter)  |
	+------+------+      +------+------+
	       |                    |
	       +---------+----------+
	                 |
	          +------+------+
	          |  Bootstrap  |
	          |(orchestrate)|
	          +-------------+

🎯 Purpose:
- Finds {{name}} and {{name:case}} tokens in file contents and directory names
- Collects variable names in a dry run, substitutes values in an apply run
- Merges a template branch and walks the operator through filling it in

🔄 Flow:
1. Status check, new branch, remote, fetch and merge
2. Dry content pass, changed-file listing and dry directory pass collect names
3. vars.Resolver asks for every name in lexical order
4. Apply content pass, directory pass deepest first, per-file moves
5. Commit

⚡ Failure model:
- Content and directory passes visit every item and return one *AggregateError
- Renames never overwrite: an existing target is a *PathCollisionError
- Bootstrap steps fail fast, except a failed merge which the operator resolves by hand

🔍 Example:

	scope := operation.ScopeFromConfig(root, config.Default())
	found, err := operation.Discover(ctx, scope)
	// ...
	err = operation.ApplyAll(ctx, scope, map[string]string{"project": "my app"}, nil)
*/
package operation
