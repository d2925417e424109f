package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// LastDateLayout is how last_date is written. Older files may also hold a
// date only or an RFC 3339 timestamp.
const LastDateLayout = "2006-01-02T15:04:05.000000"

var lastDateLayouts = []string{LastDateLayout, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Channel is one entry of the channel list file.
//
// AlbumRegexes and TrackRegexes are tried before the common grammars when
// resolving the folders of this channel.
type Channel struct {
	Name         string   `json:"name" validate:"required"`
	URL          string   `json:"url" validate:"required,url"`
	OnlyMusic    bool     `json:"only_music"`
	LastDate     string   `json:"last_date,omitempty" validate:"omitempty,lastdate"`
	AlbumRegexes []string `json:"album_regexes,omitempty" validate:"dive,regex"`
	TrackRegexes []string `json:"track_regexes,omitempty" validate:"dive,regex"`
}

// Since returns the parsed LastDate. ok is false when the channel was never
// fetched.
func (c *Channel) Since() (since time.Time, ok bool) {
	if c.LastDate == "" {
		return time.Time{}, false
	}
	t, err := parseLastDate(c.LastDate)
	return t, err == nil
}

// UnmarshalJSON fills a channel from its list entry. A missing only_music
// means true.
func (c *Channel) UnmarshalJSON(data []byte) error {
	type entry Channel
	e := entry{OnlyMusic: true}
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*c = Channel(e)
	return nil
}

// Stamp records t as the last successful fetch.
func (c *Channel) Stamp(t time.Time) {
	c.LastDate = t.Format(LastDateLayout)
}

func parseLastDate(s string) (time.Time, error) {
	var err error
	for _, layout := range lastDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.WithStack(err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("lastdate", func(fl validator.FieldLevel) bool {
		_, err := parseLastDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("regex", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the required fields and that every pattern compiles.
func (c *Channel) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrapf(err, "channel %q", c.Name)
	}
	return nil
}

// LoadChannels reads and validates the channel list file. A missing or empty
// file gives an empty list.
func LoadChannels(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	for i := range channels {
		if err := channels[i].Validate(); err != nil {
			return nil, err
		}
	}
	return channels, nil
}

// SaveChannels writes the channel list file, creating its directory.
func SaveChannels(path string, channels []Channel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStack(err)
	}
	if channels == nil {
		channels = []Channel{}
	}

	data, err := json.MarshalIndent(channels, "", "    ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, data, 0o644))
}
