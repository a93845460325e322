// The modserve command runs a demonstration fieldbus device with the
// monitoring server enabled, so the runtime core can be exercised and
// inspected without a real transport attached.
package main

func main() {
	Execute()
}
