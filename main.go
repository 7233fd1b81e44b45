package main

import "github.com/snailcrypt/snailcrypt-go/cmd"

func main() {
	cmd.Execute()
}
