package main

import "github.com/OCAP2/osu-parsers/cmd/osutool/root"

// set at build time with -ldflags "-X main.Version=... -X main.BuildDate=..."
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

func main() {
	root.Execute(Version, BuildDate)
}
