package build

// Set with -ldflags "-X github.com/rohmanhakim/last-updated/internal/build.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const shortCommitLen = 7

// FullVersion returns "Version+commit" with the commit shortened to seven
// characters, or just Version when no commit was stamped in.
func FullVersion() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	commit := Commit
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return Version + "+" + commit
}

// Description is the text printed by --version.
func Description() string {
	return FullVersion() + " (built " + BuildTime + ")"
}
