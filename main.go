package main

import "github.com/seralo/inbox-assist/cmd"

func main() {
	cmd.Execute()
}
