package main

import "sr.ht/~erock/pgit/cmd"

func main() {
	cmd.Execute()
}
