package main

import "github.com/mystore/product-catalog/cmd"

func main() {
	cmd.Execute()
}
