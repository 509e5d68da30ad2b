package main

import "baymap/cmd/baymap/cmd"

func main() {
	cmd.Execute()
}
