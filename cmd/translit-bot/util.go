package main

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
)

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("application/json", json.Minify)

	return m
}()

// minifyJson returns the input unchanged when it is not valid JSON.
func minifyJson(input []byte) string {
	out, err := minifier.Bytes("application/json", input)
	if err != nil {
		return string(input)
	}

	return string(out)
}

func checkStringLimit(input string, limit int) bool {
	return len(input) <= limit
}
