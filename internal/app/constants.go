package app

const (
	Name             = "nozzlewatch"
	DisplayName      = "NozzleWatch"
	SourceURL        = "https://github.com/nozzlewatch/nozzlewatch"
	ReleasesQueryURL = "https://api.github.com/repos/nozzlewatch/nozzlewatch/releases?per_page=5"
	ConfigFilename   = "config.json"
	DBFilename       = "app.db"
	LogFilename      = "app.log"
	StatusHistoryLen = 120
	// historyPruneEvery is the number of recorded snapshots between prunes.
	historyPruneEvery = 200
)
