package main

import (
	"mediaserver/cmd/mediaserver/app"
)

func main() {
	app.Execute()
}
