package main

import "github.com/felo/chatfiles/cmd"

func main() {
	cmd.Execute()
}
