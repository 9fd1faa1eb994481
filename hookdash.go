package hookdash

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
