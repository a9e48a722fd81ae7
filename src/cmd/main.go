package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"gitlab.com/pnathan/twofold/src/lib/log"
	"gitlab.com/pnathan/twofold/src/lib/twofold"
)

var defaultInput = []int{1, 2, 3}

// printSequence writes each element followed by ", " on its own line.
func printSequence(w io.Writer, nums []int) error {
	for _, n := range nums {
		if _, err := fmt.Fprintf(w, "%d, \n", n); err != nil {
			return err
		}
	}
	return nil
}

// readInput picks the sequence to double: the file wins over -n, and
// with neither the fixed default is used.
func readInput(file string, nums []int) ([]int, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		parsed := []int{}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%s is not a JSON array of integers: %w", file, err)
		}
		return parsed, nil
	}
	if len(nums) > 0 {
		return nums, nil
	}
	return defaultInput, nil
}

func main() {
	parser := argparse.NewParser("twofold", "prints a sequence concatenated with itself")

	nums := parser.IntList("n", "num", &argparse.Options{Required: false, Help: "element of the input sequence; repeat for more"})
	file := parser.String("f", "file", &argparse.Options{Required: false, Help: "file holding a JSON array of integers"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}
	defer log.Sync()

	input, err := readInput(*file, *nums)
	if err != nil {
		log.Fatal("unable to read input", zap.String("filename", *file), zap.Error(err))
	}

	if err := printSequence(os.Stdout, twofold.Concatenate(input)); err != nil {
		log.Fatal("unable to write output", zap.Error(err))
	}
}
