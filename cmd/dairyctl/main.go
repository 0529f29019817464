package main

import "dairyDispatch/internal/cli"

func main() {
	cli.Execute()
}
