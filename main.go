/*
fm163 downloads the tracks of playlists from a remote music catalog,
keeping a persistent history of every (track, bitrate) pair already
obtained so that repeated runs never refetch the same audio twice.

This file is the entry point for the application.
It initializes and executes the root command defined in the cmd package.
*/
package main

import "github.com/weakish/fm163/cmd"

// main is the entry point of the application.
// It calls the Execute function from the cmd package, which starts the CLI.
func main() {
	cmd.Execute()
}
