package main

import "github.com/theirongolddev/rupee/cmd"

func main() {
	cmd.Execute()
}
