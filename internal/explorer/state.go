package explorer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
)

// ErrInvalidState is returned for state that cannot be decoded.
var ErrInvalidState = errors.New("invalid state")

// State is the restorable part of a session, used for shared links.
type State struct {
	Compiler string `json:"compiler"`
	Options  string `json:"options"`
	Source   string `json:"source,omitempty"`
	// SourceZ is the compressed source, see EncodeSource.
	SourceZ string `json:"sourcez,omitempty"`
}

// EncodeSource compresses source with DEFLATE and encodes it as base64.
func EncodeSource(source string) (string, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := io.WriteString(zw, source); err != nil {
		_ = zw.Close()
		return "", fmt.Errorf("compressing: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeSource reverses EncodeSource.
func DecodeSource(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	zr := flate.NewReader(bytes.NewReader(data))
	defer zr.Close()
	source, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return string(source), nil
}

// Text returns the source, decompressing it when needed.
func (state *State) Text() (string, error) {
	if state.SourceZ != "" {
		return DecodeSource(state.SourceZ)
	}
	return state.Source, nil
}

// Link encodes the state for use in a URL fragment.
func (state *State) Link() (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseLink decodes a state created with Link.
func ParseLink(link string) (State, error) {
	var state State
	data, err := base64.RawURLEncoding.DecodeString(link)
	if err != nil {
		return state, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return state, nil
}

// SerializeState captures the compiler, options and source.
func (s *Session) SerializeState(compress bool) (State, error) {
	state := State{
		Compiler: s.compiler,
		Options:  s.options,
	}
	source := s.ui.Source.Text()
	if !compress {
		state.Source = source
		return state, nil
	}
	z, err := EncodeSource(source)
	if err != nil {
		return state, err
	}
	state.SourceZ = z
	return state, nil
}

// DeserializeState restores state into the session.
//
// Compiler ids are resolved through the alias table; an unknown compiler
// keeps the current selection. All slots are redrawn since replacing the
// source invalidates the line colouring. A compilation is scheduled only
// while autocompile is on.
func (s *Session) DeserializeState(state State) error {
	source, err := state.Text()
	if err != nil {
		return err
	}
	s.ui.Source.SetText(source)

	if c := s.resolve(state.Compiler); c != nil {
		s.compiler = c.ID
		s.persist(SettingCompiler, c.ID)
	} else {
		log.Warningf("state refers to unknown compiler %q", state.Compiler)
	}
	s.options = state.Options

	s.Refresh()
	s.SourceChanged()
	return nil
}
