package main

import "github.com/cmmoran/cxxbind/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
