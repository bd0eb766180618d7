package main

import "github.com/materialflow/mrs-management/cmd"

func main() {
	cmd.Execute()
}
