// Package main is the entry point for the request query service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/ariel1441/ai-rag-project-sub000/cmd/queryd/app"
)

func main() {
	app.NewApp().Run()
}
