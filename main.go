package main

import "github.com/abdel2584/hisn-moslim-3/cmd/hisn"

func main() {
	hisn.Execute()
}
