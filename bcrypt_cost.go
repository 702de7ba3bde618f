//go:build !race

package staffdeck

func passwordHashCost() int {
	return DefaultBcryptCost
}
