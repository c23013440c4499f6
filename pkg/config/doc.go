/*
Package config manages the optional run configuration for templit.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	   +-------+-------+-------+-------+
	   |       |               |       |
	+--+--+ +--+--+         +--+--+ +--+--+
	| YAML| | HCL |         | JSON| | TOML|
	+-----+ +-----+         +-----+ +-----+

🎯 Purpose:
- Chooses which files are scanned for tokens (extensions and explicit names)
- Chooses which globs are excluded from scanning
- Sets the commit message and branch prefix used while bootstrapping
- Enables persistence of global variables across runs

🔄 Flow:
1. Discover looks for .templitrc.{yaml,yml,hcl,json,toml} unless --config is given
2. The parser registered for the extension decodes the file
3. Validate fills defaults and normalises extensions

The template's own readme (*.templit.md) and manifest (templit.json) are always
excluded, see MetadataIgnorePatterns.
*/
package config
