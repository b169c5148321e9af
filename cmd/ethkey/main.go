package main

import (
	"github.com/sevenqinlittle/ethers.js/cmd/ethkey/cmd"
)

func main() {
	cmd.Execute()
}
