package main

import "pdfpress/cmd"

func main() {
	cmd.Execute()
}
