package main

import (
	"github.com/foomo/menuserver/cmd"
)

func main() {
	cmd.Execute()
}
