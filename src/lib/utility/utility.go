package utility

import "encoding/binary"

// Concat appends arrays, in order, into one freshly allocated slice.
// The result never shares backing storage with any of the inputs.
func Concat[T any](arrays ...[]T) []T {
	total := 0
	for _, ele := range arrays {
		total += len(ele)
	}
	result := make([]T, 0, total)
	for _, ele := range arrays {
		result = append(result, ele...)
	}
	return result
}

func UintToBytes(u uint64) []byte {
	int_buffer := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(int_buffer, u)
	return int_buffer[:n]
}

func IntToBytes(u int64) []byte {
	int_buffer := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(int_buffer, u)
	return int_buffer[:n]
}
