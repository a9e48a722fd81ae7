package twofoldapi

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"gitlab.com/pnathan/twofold/src/lib/log"
	"gitlab.com/pnathan/twofold/src/lib/utility"
)

// Sequence is the serialization of an integer sequence on the wire.
type Sequence struct {
	// Uuid identifies a request; the server echoes it back.
	Uuid uuid.UUID `json:"uuid"`
	Nums []int     `json:"nums"`
	// Digest is optional on requests and always set on responses.
	Digest Hashtype `json:"digest,omitempty"`
}

type Hashtype []byte

// GetHash computes a 64-byte SHAKE256 over the length and the varint
// encoded elements. The Uuid is not covered.
func (s *Sequence) GetHash() Hashtype {
	buf := make([]byte, 0, binary.MaxVarintLen64*(len(s.Nums)+1))
	buf = append(buf, utility.UintToBytes(uint64(len(s.Nums)))...)
	for _, n := range s.Nums {
		buf = append(buf, utility.IntToBytes(int64(n))...)
	}
	h := make([]byte, 64)
	sha3.ShakeSum256(h, buf)
	return h
}

func (s *Sequence) Seal() {
	s.Digest = s.GetHash()
}

// Verify reports whether Digest matches Nums. Unsealed sequences pass.
func (s *Sequence) Verify() bool {
	if len(s.Digest) == 0 {
		return true
	}
	return bytes.Equal(s.Digest, s.GetHash())
}

func (s *Sequence) Length() int {
	return len(s.Nums)
}

type Statistics struct {
	Requests int64 `json:"requests"`
	Elements int64 `json:"elements"`
}

const (
	http_put = "PUT"
)

func httpPut(addr string, text []byte) (*http.Response, error) {
	return httpMethod(http_put, addr, text)
}

func httpMethod(method, addr string, text []byte) (*http.Response, error) {
	log.Debug("calling server", zap.String("endpoint", addr), zap.String("method", method))
	buf := bytes.NewBuffer(text)
	client := &http.Client{}
	req, err := http.NewRequest(method, addr, buf)
	if err != nil {
		log.Warn("http error", zap.Error(err), zap.String("host", addr))
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("http error", zap.Error(err), zap.String("host", addr))
		return nil, err
	}

	return resp, nil
}

// PutConcatenate asks the server at addr to concatenate s with itself.
// s is not modified; a zero Uuid is replaced on the request copy only.
func PutConcatenate(s *Sequence, addr string) (*Sequence, error) {
	req := *s
	if req.Uuid == uuid.Nil {
		req.Uuid = uuid.New()
	}
	text, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	formulatedAddress := fmt.Sprintf("%v/api/concatenate", addr)

	resp, err := httpPut(formulatedAddress, text)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("bad request")
	case http.StatusNotAcceptable:
		return nil, fmt.Errorf("digest rejected by server")
	case http.StatusRequestEntityTooLarge:
		return nil, fmt.Errorf("sequence of %d elements is too long for the server", req.Length())
	default:
		return nil, fmt.Errorf("bad error code: %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	result := &Sequence{}
	if err := decoder.Decode(result); err != nil {
		log.Warn("decoding error", zap.Error(err), zap.String("address", formulatedAddress))
		return nil, err
	}
	if result.Uuid != req.Uuid {
		return nil, fmt.Errorf("response for %v answered request %v", result.Uuid, req.Uuid)
	}
	if len(result.Digest) == 0 || !result.Verify() {
		return nil, fmt.Errorf("response digest mismatch for %v", result.Uuid)
	}
	if result.Length() != 2*req.Length() {
		return nil, fmt.Errorf("expected %d elements, got %d", 2*req.Length(), result.Length())
	}
	return result, nil
}

func GetStatistics(addr string) (*Statistics, error) {
	formulatedAddress := fmt.Sprintf("%v/api/statistics", addr)
	resp, err := http.Get(formulatedAddress)
	if err != nil {
		log.Warn("http error", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad error code: %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)

	s := &Statistics{}
	if err := decoder.Decode(s); err != nil {
		log.Warn("decoding error", zap.Error(err), zap.String("address", formulatedAddress))
		return nil, err
	}
	return s, nil
}
