// internal/words/words.go
//
// Dictionary management for the game engine.
//
// Responsibilities:
//   - Build an immutable Dictionary from any sequence of candidate words.
//   - Load candidates from a word file (WORDS_FILE) or the embedded default list.
//   - Supply random draws through an injected Source, plus membership checks.
//
// Constraints:
//   • Words must be 5 alphabetic letters (A–Z) after trimming.
//   • Words are normalized to uppercase.
//   • A Dictionary is never mutated after New returns, so it is safe to share
//     between goroutines without locking.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/arena-server/assets"
)

// WordLength is the fixed length of every dictionary word and guess.
const WordLength = 5

// ErrEmptyDictionary is returned when no candidate survives normalization.
// It is fatal at startup.
var ErrEmptyDictionary = errors.New("words: dictionary is empty")

// Source supplies uniform random indexes in [0, n).
// *math/rand/v2.Rand satisfies it; CryptoSource is the default.
type Source interface {
	IntN(n int) int
}

// CryptoSource draws indexes from crypto/rand. It is safe for concurrent use.
type CryptoSource struct{}

// IntN returns a uniformly random int in [0, n).
func (CryptoSource) IntN(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

// Dictionary is an immutable, uppercase set of 5-letter words.
type Dictionary struct {
	list []string            // load order, deduplicated
	set  map[string]struct{} // membership
}

// New builds a Dictionary from candidates, keeping only trimmed words of
// exactly WordLength letters. Duplicates are dropped, order is preserved.
func New(candidates []string) (*Dictionary, error) {
	d := &Dictionary{set: make(map[string]struct{}, len(candidates))}
	for _, c := range candidates {
		w := strings.ToUpper(strings.TrimSpace(c))
		if len(w) != WordLength || !IsAlpha(w) {
			continue
		}
		if _, dup := d.set[w]; dup {
			continue
		}
		d.set[w] = struct{}{}
		d.list = append(d.list, w)
	}
	if len(d.list) == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// Load reads candidates from path, or from the embedded list when path is empty.
func Load(path string) (*Dictionary, error) {
	var (
		lines []string
		err   error
	)
	if path == "" {
		lines, err = assets.WordList()
	} else {
		lines, err = readWordFile(path)
	}
	if err != nil {
		return nil, err
	}
	return New(lines)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// IsAlpha reports whether s is all uppercase ASCII letters.
func IsAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Contains reports whether w (already uppercase) is a dictionary word.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.set[w]
	return ok
}

// Random draws a uniformly random word using src.
func (d *Dictionary) Random(src Source) string {
	return d.list[src.IntN(len(d.list))]
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.list) }

// Words returns a copy of the word list in load order.
func (d *Dictionary) Words() []string {
	return append([]string(nil), d.list...)
}
