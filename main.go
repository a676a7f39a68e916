// Package main is the entrypoint for the greenplate CLI.
package main

import (
	"github.com/huangsam/greenplate/cmd"
	"github.com/huangsam/greenplate/internal/contract"
	"github.com/huangsam/greenplate/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("greenplate failed", err)
	}
}
