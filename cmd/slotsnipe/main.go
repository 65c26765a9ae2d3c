package main

import "github.com/example/slot-sniper/cmd"

func main() {
	cmd.Execute()
}
