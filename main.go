package main

import "github.com/mabhi256/objexplorer/cmd"

func main() {
	cmd.Execute()
}
