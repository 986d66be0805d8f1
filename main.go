package main

import "github.com/GbredngleK/NG-Insider-Bot/cli"

func main() {
	cli.Execute()
}
