package main

import "github.com/cinderchain/cinder/cmd/cinder/cmd"

func main() {
	cmd.Execute()
}
