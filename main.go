package main

import "github.com/ComedicChimera/ratesfmt/cmd"

func main() {
	cmd.Execute()
}
