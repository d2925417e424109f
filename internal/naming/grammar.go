package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrInvalidGrammar is returned when a channel supplies a pattern that does
// not compile.
var ErrInvalidGrammar = errors.New("invalid grammar")

// Grammar is one pattern of a grammar list. It always matches the whole
// string: the source is anchored when compiled.
type Grammar struct {
	source string
	re     *regexp.Regexp
}

// Compile builds a Grammar from a pattern source such as
// `(?P<track_number>\d+) - (?P<title>.*)`.
func Compile(source string) (Grammar, error) {
	re, err := regexp.Compile(`^(?:` + source + `)$`)
	if err != nil {
		return Grammar{}, errors.Wrapf(ErrInvalidGrammar, "%q: %v", source, err)
	}
	return Grammar{source: source, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) Grammar {
	g, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return g
}

// String returns the pattern source the grammar was compiled from.
func (g Grammar) String() string {
	return g.source
}

// Match reports whether s matches the grammar and returns the named groups it
// captured with trailing whitespace removed. Groups the grammar does not
// declare are absent from the map; lookups yield "".
func (g Grammar) Match(s string) (map[string]string, bool) {
	m := g.re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	groups := make(map[string]string, len(m))
	for i, name := range g.re.SubexpNames() {
		if name == "" {
			continue
		}
		groups[name] = strings.TrimRightFunc(m[i], unicode.IsSpace)
	}
	return groups, true
}

// CommonAlbumGrammars are tried after any channel specific album grammar.
var CommonAlbumGrammars = []Grammar{
	MustCompile(`(?P<release_date>[0-9]{8}|NA) - (?P<album_artist>.*) - (?P<album>.*)`),
	MustCompile(`(?P<release_date>[0-9]{8}|NA) - (?P<album>.*)`),
}

// CommonTrackGrammars are tried after any channel specific track grammar.
var CommonTrackGrammars = []Grammar{
	MustCompile(`(?P<track_number>\d+) - (?P<artist>.*) - (?P<title>.*)`),
	MustCompile(`(?P<track_number>\d+) - (?P<title>.*)`),
	MustCompile(`(?P<track_number>Full) - (?P<artist>.*) - (?P<title>.*)`),
	MustCompile(`(?P<track_number>Full) - (?P<title>.*)`),
}

// Grammars is the full, ordered grammar set for one channel batch. It is
// built once per channel and passed to every resolver call, so one channel's
// patterns can never leak into another channel's folders.
type Grammars struct {
	Album []Grammar
	Track []Grammar
}

// NewGrammars compiles the channel's album and track sources and appends the
// common fallbacks after them. Either list may be empty.
func NewGrammars(albumSources, trackSources []string) (Grammars, error) {
	album, err := compileAll(albumSources)
	if err != nil {
		return Grammars{}, err
	}
	track, err := compileAll(trackSources)
	if err != nil {
		return Grammars{}, err
	}

	return Grammars{
		Album: append(album, CommonAlbumGrammars...),
		Track: append(track, CommonTrackGrammars...),
	}, nil
}

// DefaultGrammars holds only the common fallbacks.
func DefaultGrammars() Grammars {
	g, _ := NewGrammars(nil, nil)
	return g
}

func compileAll(sources []string) ([]Grammar, error) {
	grammars := make([]Grammar, 0, len(sources))
	for _, src := range sources {
		g, err := Compile(src)
		if err != nil {
			return nil, err
		}
		grammars = append(grammars, g)
	}
	return grammars, nil
}
