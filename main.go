package main

import "daily-moments-backend/cmd"

func main() {
	cmd.Run()
}
