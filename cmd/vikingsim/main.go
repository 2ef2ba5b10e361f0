// Command vikingsim runs the raiding-age conflict campaign.
package main

func main() {
	Execute()
}
