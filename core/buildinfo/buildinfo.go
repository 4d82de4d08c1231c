package buildinfo

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/insightbot/core/buildinfo.Version=v1.0.0'
//	-X 'github.com/m3rciful/insightbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/insightbot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)
