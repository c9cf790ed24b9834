package main

import "github.com/KaramelBytes/evdash/cmd"

func main() {
	cmd.Execute()
}
