package main

import "github.com/saadjs/pantry-cli/cmd/pantry"

func main() {
	pantry.Execute()
}
