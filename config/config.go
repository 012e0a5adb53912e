package config

import (
	"fmt"
	"strconv"
	"strings"

	"fedinstance/optional"

	"gopkg.in/ini.v1"
)

// Reader reads raw site configuration values by section and key.
type Reader interface {
	Value(section, key string) (string, bool)
}

// File is a site configuration backed by an INI document.
type File struct {
	cfg *ini.File
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}
}

// Load reads the INI file at path. A missing file yields an empty configuration.
func Load(path string) (*File, error) {
	opts := loadOptions()
	opts.Loose = true
	cfg, err := ini.LoadSources(opts, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return &File{cfg: cfg}, nil
}

// LoadBytes parses an in-memory INI document.
func LoadBytes(data []byte) (*File, error) {
	cfg, err := ini.LoadSources(loadOptions(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &File{cfg: cfg}, nil
}

func (f *File) Value(section, key string) (string, bool) {
	sec, err := f.cfg.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", false
	}
	return sec.Key(key).String(), true
}

func (f *File) Set(section, key, value string) {
	f.cfg.Section(section).Key(key).SetValue(value)
}

func (f *File) SaveTo(path string) error {
	if err := f.cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save config %s: %w", path, err)
	}
	return nil
}

// Get returns the raw value, or None when the key is unset.
func Get(r Reader, section, key string) optional.Option[string] {
	v, ok := r.Value(section, key)
	if !ok {
		return optional.None[string]()
	}
	return optional.Some(v)
}

func String(r Reader, section, key, def string) string {
	return Get(r, section, key).ValueOrDefault(def)
}

// Int reads a value with integer coercion; see IntVal.
func Int(r Reader, section, key string, def int) int {
	v := Get(r, section, key)
	if !v.Has() {
		return def
	}
	return IntVal(v.Value())
}

// Bool treats "", "0" and "false" as false and anything else as true.
func Bool(r Reader, section, key string, def bool) bool {
	v := Get(r, section, key)
	if !v.Has() {
		return def
	}
	s := strings.TrimSpace(v.Value())
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s != "" && s != "0"
}

// IntVal converts the leading integer of s, ignoring leading whitespace and
// anything after the digits. Strings without a leading integer yield 0.
func IntVal(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of range
		if s[0] == '-' {
			return minInt
		}
		return maxInt
	}
	return n
}

const (
	maxInt = int(^uint(0) >> 1)
	minInt = -maxInt - 1
)
