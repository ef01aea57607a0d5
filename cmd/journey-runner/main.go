package main

import "github.com/replaykit/journey-runner/pkg/cli"

func main() {
	cli.Execute()
}
