// Package assets embeds the default word list shipped with the server.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed wordlist.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// WordList returns the raw lines of the embedded dictionary, comments removed.
func WordList() ([]string, error) {
	return readLines("wordlist.txt")
}
