package main

import (
	"fmt"
	"runtime/debug"
)

// VersionCmd displays version information for mutexstress.
type VersionCmd struct{}

// Run executes the mutexstress version command.
func (cmd VersionCmd) Run() error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println("mutexstress (unknown version)")
		return nil
	}

	fmt.Printf("mutexstress %s (%s)\n", info.Main.Version, info.GoVersion)
	return nil
}
