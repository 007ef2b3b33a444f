// Package defaults provides embedded default assets (prompt template and config).
package defaults

import _ "embed"

// SearchPrompt is the built-in prompt template. It receives the schema as
// {{.Schema}} and the raw query as {{.Query}}.
//
//go:embed search_prompt.txt
var SearchPrompt string

//go:embed default_config.toml
var DefaultConfigTOML []byte
