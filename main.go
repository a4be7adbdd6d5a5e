package main

import "github.com/KaramelBytes/csvask-cli/cmd"

func main() {
	cmd.Execute()
}
