package main

import "github.com/webhookx-io/hookdash/cmd"

func main() {
	cmd.Execute()
}
