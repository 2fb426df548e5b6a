package main

import "github.com/autorentar/rental-payments/cmd"

func main() {
	cmd.Execute()
}
