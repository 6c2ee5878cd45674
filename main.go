package main

import "imagemin/cmd"

func main() {
	cmd.Execute()
}
