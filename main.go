package main

import "jury-dashboard/cli"

func main() {
	cli.Execute()
}
