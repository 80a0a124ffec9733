package main

import (
	"fmt"
	"os"

	"github.com/chrisuehlinger/vibewindow/cmd"
)

var (
	version string = "dev"
	commit  string
	date    string
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err != nil {
		fmt.Printf("vibewindow: %s\n", err.Error())
		os.Exit(1)
	}
}
