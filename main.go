package main

import "playdate-backend/cmd"

func main() {
	cmd.Run()
}
