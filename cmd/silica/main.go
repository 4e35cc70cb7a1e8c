package main

import (
	"github.com/joho/godotenv"

	"github.com/silica-hdl/silica/cmd/silica/cmd"
)

func main() {
	_ = godotenv.Load()

	cmd.Execute()
}
