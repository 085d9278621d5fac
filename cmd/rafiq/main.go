// Package main is the entry point for the Rafiq assistant server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/rafiq/cmd/rafiq/app"
)

func main() {
	app.NewApp().Run()
}
