package main

import "github.com/linux-china/dotenvx-go/cmd/dotenvx/cmd"

func main() {
	cmd.Execute()
}
