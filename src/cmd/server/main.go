package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/akamensky/argparse"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"go.uber.org/zap"

	"gitlab.com/pnathan/twofold/src/lib/log"
	"gitlab.com/pnathan/twofold/src/lib/twofold"
	"gitlab.com/pnathan/twofold/src/lib/twofoldapi"
)

var GLOBAL_COUNTER *twofold.Counter

// MAX_ELEMENTS bounds accepted input so one request can't exhaust memory.
var MAX_ELEMENTS = 1_000_000

// Widest JSON integer is "-9223372036854775808," and the rest of a
// Sequence (uuid, base64 digest, keys) fits in envelopeBytes.
const (
	bytesPerElement = 21
	envelopeBytes   = 256
)

// maxBodyBytes is the largest body that can hold MAX_ELEMENTS elements.
func maxBodyBytes() int64 {
	return bytesPerElement*int64(MAX_ELEMENTS) + envelopeBytes
}

// setLimit validates and installs the element limit from the command line.
func setLimit(max int) error {
	if max < 0 {
		return fmt.Errorf("max must not be negative, got %d", max)
	}
	MAX_ELEMENTS = max
	return nil
}

func concatenate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())
	decoder := json.NewDecoder(r.Body)

	input := twofoldapi.Sequence{}
	if err := decoder.Decode(&input); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			log.Warn("refusing oversized body", zap.Int64("limit", tooBig.Limit), zap.Int("max", MAX_ELEMENTS))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = w.Write([]byte("sequence too long"))
			return
		}
		log.Printf("%#v", err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("couldn't decode"))
		return
	}

	if input.Length() > MAX_ELEMENTS {
		log.Warn("refusing oversized sequence", zap.Int("length", input.Length()), zap.Int("max", MAX_ELEMENTS))
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte("sequence too long"))
		return
	}

	if !input.Verify() {
		log.Info("digest mismatch on submitted sequence", zap.Stringer("uuid", input.Uuid))
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte("digest mismatch"))
		return
	}

	if input.Uuid == uuid.Nil {
		input.Uuid = uuid.New()
	}

	output := twofoldapi.Sequence{
		Uuid: input.Uuid,
		Nums: twofold.Concatenate(input.Nums),
	}
	output.Seal()

	bytes, err := json.Marshal(&output)
	if err != nil {
		log.Error("unable to encode result", zap.Stringer("uuid", output.Uuid), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("error"))
		return
	}
	GLOBAL_COUNTER.Record(output.Length())
	log.Debug("concatenated", zap.Stringer("uuid", output.Uuid), zap.Int("length", output.Length()))

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bytes)
}

func statistics(w http.ResponseWriter, r *http.Request) {
	requests, elements := GLOBAL_COUNTER.Snapshot()
	bytes, err := json.Marshal(&twofoldapi.Statistics{
		Requests: requests,
		Elements: elements,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "failed to gather stats")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bytes)
}

//////////////////////////////////////////////////////////////
func init() {
	GLOBAL_COUNTER = twofold.NewCounter()
}

func Default(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ok")
}

func Index(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "twofold: PUT /api/concatenate {\"nums\": [1, 2, 3]}\n")
}

func Wut(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "your content is in another url")
}

func loggerHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Info("request", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Duration("took", time.Since(start)))
	})
}

func newHandler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", Index).Methods("GET")
	r.HandleFunc("/healthz", Default)
	r.HandleFunc("/api/concatenate", concatenate).Methods("PUT")
	r.HandleFunc("/api/statistics", statistics).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(Wut)

	return alice.New(loggerHandler).Then(r)
}

//////////////////////////////////////////////////////////////
func main() {
	parser := argparse.NewParser("twofold-server", "serves sequence concatenation")

	host := parser.String("i", "ip", &argparse.Options{Required: false, Help: "ip to bind to", Default: "0.0.0.0"})
	port := parser.String("p", "port", &argparse.Options{Required: false, Help: "port to bind to", Default: "1337"})
	maxLen := parser.Int("m", "max", &argparse.Options{Required: false, Help: "longest input sequence accepted", Default: MAX_ELEMENTS})
	// Parse input
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}
	defer log.Sync()

	if err := setLimit(*maxLen); err != nil {
		log.Fatal("bad limit", zap.Error(err))
	}

	log.Info("listening", zap.String("host", *host), zap.String("port", *port), zap.Int("max", MAX_ELEMENTS))

	srv := &http.Server{
		Handler:      newHandler(),
		Addr:         fmt.Sprintf("%s:%s", *host, *port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Fatal("server failure", zap.Error(srv.ListenAndServe()))
}
