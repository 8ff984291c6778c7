package main

import "github.com/robertgumeny/warden/cmd"

func main() {
	cmd.Execute()
}
