package build

// Info holds build-time information injected during compilation, e.g.:
//
//	go build -ldflags "-X bandscope/internal/build.version=0.2.0"
type Info struct {
	Name    string
	Version string
	Commit  string
	Time    string
}

// Populated via -ldflags; development builds fall back to "dev".
var (
	name    = "bandscope"
	version = "dev"
	commit  = "none"
	time    = "unknown"
)

// GetInfo returns the build information for this binary.
func GetInfo() Info {
	return Info{
		Name:    name,
		Version: version,
		Commit:  commit,
		Time:    time,
	}
}
