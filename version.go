package formflow

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the released version of formflow.
var Version = strings.TrimSpace(version)
