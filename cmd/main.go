package main

import (
	"os"

	"github.com/golang/glog"

	"worldquiz/internal/cli"
)

func main() {
	err := cli.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
