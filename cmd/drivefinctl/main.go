// Command drivefinctl queries drivefin storage from the terminal.
package main

import "os"

func main() {
	os.Exit(execute())
}
