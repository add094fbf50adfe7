package main

import "github.com/shouni/go-review-nlp/cmd"

func main() {
	cmd.Execute()
}
