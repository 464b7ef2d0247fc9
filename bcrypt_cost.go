//go:build !race

package bookly

func passwordHashCost() int {
	return 14
}
