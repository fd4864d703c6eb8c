package main

import "github.com/naka-gawa/portfolio-feed/cmd"

func main() {
	cmd.Execute()
}
