// Command pmemctl creates and inspects persistent memory pool files.
package main

func main() {
	execute()
}
