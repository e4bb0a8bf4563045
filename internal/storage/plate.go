package storage

import "strings"

// NormalizePlate canonicalizes a plate number for storage and lookup:
// uppercase, no spaces or dashes. The server uppercases plates on its
// side; the cache must match regardless of how the guard typed it.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, " ", "")
	plate = strings.ReplaceAll(plate, "-", "")
	return plate
}
