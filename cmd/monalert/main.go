package main

import (
	"os"

	"monalert/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
