package main

import "github.com/rbxsim/rbxsim/internal/cli"

func main() {
	cli.Execute()
}
