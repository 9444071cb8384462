package main

import "github.com/safar/pharmsync/internal/cmd"

func main() {
	cmd.Execute()
}
