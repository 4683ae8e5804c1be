package main

import (
	"os"

	"github.com/jdeb-project/jdeb/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
