package main

import (
	"os"

	"github.com/simonhull/create-v1-app/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
