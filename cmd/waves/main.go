package main

import "github.com/llehouerou/wavecore/cmd/waves/cmd"

func main() {
	cmd.Execute()
}
