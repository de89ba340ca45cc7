package main

import "multiroot/cmd"

// version and repository are set at build time via
// -ldflags "-X main.version=... -X main.repository=owner/repo"
var (
	version    = "dev"
	repository = ""
)

func main() {
	cmd.SetVersion(version)
	cmd.SetRepository(repository)
	cmd.Execute()
}
