package main

import "github.com/theopenlane/spectra/cmd"

func main() {
	cmd.Execute()
}
