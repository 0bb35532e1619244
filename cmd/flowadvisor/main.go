package main

import "FlowAdvisor/internal/cli"

func main() {
	cli.Execute()
}
