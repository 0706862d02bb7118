package cli

import (
	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/internal/observability"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	Engine      *core.Engine
	ConfigMgr   core.ConfigurationManager
	Config      *models.GlobalConfig
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
