package main

import "deskinsight/internal/app"

func main() {
	app.Main()
}
