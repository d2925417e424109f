package pipeline

import (
	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/naming"
	"github.com/pkg/errors"
)

// ChannelGrammars picks the grammars of the channel a publisher folder
// belongs to, falling back to the common grammars for unknown publishers.
type ChannelGrammars struct {
	byName   map[string]naming.Grammars
	fallback naming.Grammars
}

// NewChannelGrammars compiles the patterns of every channel up front.
func NewChannelGrammars(channels []config.Channel) (*ChannelGrammars, error) {
	cg := &ChannelGrammars{
		byName:   make(map[string]naming.Grammars, len(channels)),
		fallback: naming.DefaultGrammars(),
	}
	for _, ch := range channels {
		g, err := naming.NewGrammars(ch.AlbumRegexes, ch.TrackRegexes)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %q", ch.Name)
		}
		cg.byName[ch.Name] = g
	}
	return cg, nil
}

// For returns the grammars for a publisher folder name.
func (cg *ChannelGrammars) For(publisher string) naming.Grammars {
	if g, ok := cg.byName[publisher]; ok {
		return g
	}
	return cg.fallback
}
