package main

import "github.com/ogulcanaydogan/token-ledger/internal/cli"

func main() {
	cli.Execute()
}
