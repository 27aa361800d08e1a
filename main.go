package main

import "github.com/atenalab/quizrag/cmd"

func main() {
	cmd.Execute()
}
