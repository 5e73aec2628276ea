package connectors

const (
	TopicConnStatus        = "conn.status"
	TopicStatusSnapshot    = "status.snapshot"
	TopicSettingsCommitted = "settings.committed"
	TopicSettingsSaveFail  = "settings.save_failed"
	TopicUpdateSnapshot    = "app.update_snapshot"
)
