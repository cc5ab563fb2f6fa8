package core

import (
	"fmt"
	"strconv"
)

func HashContent(content []byte) string {
	return fmt.Sprintf("%d", hashSum(content))
}

// ShortHash is a base36 rendering of HashContent truncated to n characters.
func ShortHash(content []byte, n int) string {
	s := strconv.FormatInt(int64(hashSum(content)), 36)
	if len(s) > n {
		return s[:n]
	}
	return s
}

func hashSum(content []byte) int {
	result := 0
	for _, b := range content {
		result = (result*31 + int(b)) % 1000000007
	}
	return result
}
