package main

import "github.com/Chauhan-saab2006/music--app/internal/cli"

func main() {
	cli.Execute()
}
