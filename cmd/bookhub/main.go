package main

import "github.com/binhbb2204/BookHub/cli"

func main() {
	cli.Execute()
}
