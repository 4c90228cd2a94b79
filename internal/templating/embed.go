package templating

import (
	"embed"
)

//go:embed html
var TemplateFS embed.FS
