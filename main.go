package main

import "github.com/statutecheck/statutecheck/cmd"

func main() {
	cmd.Execute()
}
