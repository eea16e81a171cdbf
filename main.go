package main

import "funnelforge/cmd"

func main() {
	cmd.Execute()
}
