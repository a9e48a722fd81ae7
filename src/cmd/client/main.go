package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"gitlab.com/pnathan/twofold/src/lib/log"
	"gitlab.com/pnathan/twofold/src/lib/twofoldapi"
)

func MustMarshal(v any) []byte {
	b := new(bytes.Buffer)
	encoder := json.NewEncoder(b)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(v)
	if err != nil {
		panic(err)
	}

	return b.Bytes()
}

func Moan(complaint error) {
	log.Fatal("client failure", zap.Error(complaint))
}

// sequenceFrom builds the request body from -n values, a file, or stdin, in that order.
func sequenceFrom(nums []int, file string, stdin io.Reader) (*twofoldapi.Sequence, error) {
	if len(nums) > 0 {
		return &twofoldapi.Sequence{Nums: nums}, nil
	}
	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, err
	}
	parsed := []int{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("input is not a JSON array of integers: %w", err)
	}
	return &twofoldapi.Sequence{Nums: parsed}, nil
}

// buildRequest reads the sequence and, when seal is set, attaches its digest.
func buildRequest(nums []int, file string, stdin io.Reader, seal bool) (*twofoldapi.Sequence, error) {
	seq, err := sequenceFrom(nums, file, stdin)
	if err != nil {
		return nil, err
	}
	if seal {
		seq.Seal()
	}
	return seq, nil
}

func main() {
	parser := argparse.NewParser("twofold client", "twofold client code")

	endpoint := parser.String("e", "endpoint", &argparse.Options{Required: false, Help: "endpoint to address", Default: "http://localhost:1337"})

	concatCmd := parser.NewCommand("concatenate", "concatenate a sequence with itself on the server")
	nums := concatCmd.IntList("n", "num", &argparse.Options{Required: false, Help: "element of the sequence; repeat for more"})
	file := concatCmd.String("f", "file", &argparse.Options{Required: false, Help: "file with a JSON array; if not present, reads from stdin"})
	sign := concatCmd.Flag("s", "seal", &argparse.Options{Required: false, Help: "attach a digest to the request"})

	statsCmd := parser.NewCommand("statistics", "get server statistics")

	// Parse input
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}
	defer log.Sync()

	if concatCmd.Happened() {
		seq, err := buildRequest(*nums, *file, os.Stdin, *sign)
		if err != nil {
			Moan(err)
		}
		result, err := twofoldapi.PutConcatenate(seq, *endpoint)
		if err != nil {
			Moan(err)
		}
		fmt.Print(string(MustMarshal(result.Nums)))
	} else if statsCmd.Happened() {
		stats, err := twofoldapi.GetStatistics(*endpoint)
		if err != nil {
			Moan(err)
		}
		fmt.Print(string(MustMarshal(stats)))
	} else {
		Moan(fmt.Errorf("can't happen"))
	}
}
