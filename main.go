package main

import "github.com/LegacyCodeHQ/pkgtrace/cmd"

func main() {
	cmd.Execute()
}
