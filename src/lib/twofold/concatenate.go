// Package twofold doubles integer sequences.
package twofold

import (
	"gitlab.com/pnathan/twofold/src/lib/utility"
)

// Concatenate returns a new slice holding nums followed by nums again.
// The result has length 2*len(nums), is never nil and does not share
// storage with nums.
func Concatenate(nums []int) []int {
	return utility.Concat(nums, nums)
}
