package main

import "github.com/nhle/todolist/cmd"

func main() {
	cmd.Execute()
}
