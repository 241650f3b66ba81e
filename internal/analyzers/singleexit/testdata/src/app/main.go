package main

import "os"

func run() int { return 0 }

func main() {
	os.Exit(run())
}
